package assembly

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ensamble-api/internal/application/dto"
	"github.com/jhoicas/Ensamble-api/internal/domain"
	domainassembly "github.com/jhoicas/Ensamble-api/internal/domain/assembly"
	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
	"github.com/jhoicas/Ensamble-api/pkg/logger"
)

// CreateAssemblyUseCase orquesta la creación de un ensamble: valida, descuenta cada componente
// del lote elegido, registra ensamble/unidades/consumos y suma el artículo terminado, todo en
// una sola transacción.
type CreateAssemblyUseCase struct {
	txRunner     TxRunner
	bomRepo      repository.BOMRepository
	poRepo       repository.PurchaseOrderRepository
	activityRepo repository.ActivityLogRepository
	idempotency  IdempotencyStore
	metrics      Metrics
	log          *logger.Logger
	now          func() time.Time
}

// NewCreateAssemblyUseCase construye el caso de uso. idempotency y metrics pueden ser nil.
func NewCreateAssemblyUseCase(
	txRunner TxRunner,
	bomRepo repository.BOMRepository,
	poRepo repository.PurchaseOrderRepository,
	activityRepo repository.ActivityLogRepository,
	idempotency IdempotencyStore,
	metrics Metrics,
	log *logger.Logger,
) *CreateAssemblyUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CreateAssemblyUseCase{
		txRunner:     txRunner,
		bomRepo:      bomRepo,
		poRepo:       poRepo,
		activityRepo: activityRepo,
		idempotency:  idempotency,
		metrics:      metrics,
		log:          log.Named("assembly.create"),
		now:          time.Now,
	}
}

// CreateAssemblyInput entrada del orquestador.
// Sources mapea ComponentItemID → VendorID ("" = fuente interna); una entrada por componente.
type CreateAssemblyInput struct {
	UserID         string
	BOMID          string
	Name           string
	Quantity       int
	Sources        map[string]string
	PONumber       string
	IdempotencyKey string
}

// CreateAssemblyFromRequest adapta el body HTTP. tokenUserID es el usuario autenticado; si el body
// trae userId distinto se rechaza con ErrForbidden.
func (uc *CreateAssemblyUseCase) CreateAssemblyFromRequest(ctx context.Context, tokenUserID, idempotencyKey string, in dto.CreateAssemblyRequest) (*entity.Assembly, error) {
	userID, err := actingUser(tokenUserID, in.UserID)
	if err != nil {
		return nil, err
	}
	sources := make(map[string]string, len(in.ComponentSources))
	for _, s := range in.ComponentSources {
		if s.ComponentID == "" {
			return nil, fmt.Errorf("%w: componentSources con componentId vacío", domain.ErrInvalidInput)
		}
		if _, dup := sources[s.ComponentID]; dup {
			return nil, fmt.Errorf("%w: el componente %s tiene más de una fuente", domain.ErrInvalidInput, s.ComponentID)
		}
		vendorID := ""
		if s.VendorID != nil {
			vendorID = strings.TrimSpace(*s.VendorID)
		}
		sources[s.ComponentID] = vendorID
	}
	po := ""
	if in.PONumber != nil {
		po = strings.TrimSpace(*in.PONumber)
	}
	return uc.CreateAssembly(ctx, CreateAssemblyInput{
		UserID:         userID,
		BOMID:          in.BOMID,
		Name:           strings.TrimSpace(in.AssemblyName),
		Quantity:       in.Quantity,
		Sources:        sources,
		PONumber:       po,
		IdempotencyKey: idempotencyKey,
	})
}

// CreateAssembly ejecuta la creación completa. Retorna el ensamble creado (con unidades) o un error
// sin efectos persistidos.
func (uc *CreateAssemblyUseCase) CreateAssembly(ctx context.Context, in CreateAssemblyInput) (*entity.Assembly, error) {
	start := time.Now()
	a, err := uc.create(ctx, in)
	uc.metrics.ObserveCreate(Outcome(err), time.Since(start))
	if err != nil {
		uc.log.Warn().Err(err).Str("bom_id", in.BOMID).Int("quantity", in.Quantity).Str("user_id", in.UserID).Msg("ensamble rechazado")
		return nil, err
	}
	uc.log.Info().Str("assembly_id", a.ID).Str("bom_id", a.BOMID).Int("quantity", a.Quantity).Str("user_id", a.CreatedBy).Msg("ensamble creado")
	return a, nil
}

func (uc *CreateAssemblyUseCase) create(ctx context.Context, in CreateAssemblyInput) (*entity.Assembly, error) {
	// ── 1. Validación previa a cualquier mutación ────────────────────────────
	if in.BOMID == "" {
		return nil, fmt.Errorf("%w: seleccione una BOM", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 || in.Quantity > domainassembly.MaxAssemblyUnits {
		return nil, fmt.Errorf("%w: la cantidad debe ser un entero entre 1 y %d (recibido %d)",
			domain.ErrInvalidInput, domainassembly.MaxAssemblyUnits, in.Quantity)
	}
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: usuario requerido", domain.ErrInvalidInput)
	}

	bom, err := uc.bomRepo.GetByID(ctx, in.BOMID)
	if err != nil {
		return nil, fmt.Errorf("obtener BOM: %w", err)
	}
	if bom == nil {
		return nil, fmt.Errorf("%w: BOM %s", domain.ErrNotFound, in.BOMID)
	}
	if err := domainassembly.ValidateBOM(bom); err != nil {
		return nil, err
	}
	if err := domainassembly.ValidateSources(bom, in.Sources); err != nil {
		return nil, err
	}

	if in.PONumber != "" {
		po, err := uc.poRepo.GetByNumber(ctx, in.PONumber)
		if err != nil {
			return nil, fmt.Errorf("obtener orden de compra: %w", err)
		}
		if po == nil {
			return nil, fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, in.PONumber)
		}
		if po.Status != entity.POStatusOpen {
			return nil, fmt.Errorf("%w: %s está en estado %s", domain.ErrPurchaseOrderClosed, po.PONumber, po.Status)
		}
	}

	// ── 2. Idempotencia (opcional) ───────────────────────────────────────────
	if in.IdempotencyKey != "" && uc.idempotency != nil {
		fresh, err := uc.idempotency.Reserve(ctx, in.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("reservar clave de idempotencia: %w", err)
		}
		if !fresh {
			return nil, fmt.Errorf("%w: la solicitud %s ya fue procesada", domain.ErrDuplicate, in.IdempotencyKey)
		}
	}

	a := uc.newAssembly(bom, in)

	// ── 3. Transacción: descuentos condicionales + registros + artículo terminado ──
	err = uc.txRunner.RunAssembly(ctx, func(
		itemRepo repository.InventoryItemRepository,
		stockRepo repository.VendorStockRepository,
		assemblyRepo repository.AssemblyRepository,
	) error {
		units := decimal.NewFromInt(int64(in.Quantity))
		lines := make(map[string]entity.BOMItem, len(bom.Items))
		ids := make([]string, 0, len(bom.Items)+1)
		for _, it := range bom.Items {
			lines[it.ComponentItemID] = it
			ids = append(ids, it.ComponentItemID)
		}
		ids = append(ids, bom.AssembledItemID)

		lots := make(map[string]*entity.VendorStockLot, len(bom.Items))
		for _, itemID := range itemLockOrder(ids...) {
			if itemID == bom.AssembledItemID {
				if err := stockRepo.Restore(ctx, itemID, "", units); err != nil {
					return fmt.Errorf("sumar artículo terminado %s: %w", bom.AssembledItemName, err)
				}
				if err := itemRepo.AdjustStock(ctx, itemID, units); err != nil {
					return fmt.Errorf("sumar artículo terminado %s: %w", bom.AssembledItemName, err)
				}
				continue
			}
			it := lines[itemID]
			vendorID := in.Sources[itemID]
			required := domainassembly.RequiredQuantity(it.QuantityPerUnit, in.Quantity)
			lot, err := stockRepo.Reserve(ctx, itemID, vendorID, required)
			if err != nil {
				return componentError(err, it, vendorID, required)
			}
			if err := itemRepo.AdjustStock(ctx, itemID, required.Neg()); err != nil {
				return componentError(err, it, vendorID, required)
			}
			lots[itemID] = lot
		}

		if err := assemblyRepo.Create(ctx, a); err != nil {
			return err
		}
		return assemblyRepo.CreateUsage(ctx, buildUsage(a, bom, lots))
	})
	if err != nil {
		if in.IdempotencyKey != "" && uc.idempotency != nil {
			if relErr := uc.idempotency.Release(context.WithoutCancel(ctx), in.IdempotencyKey); relErr != nil {
				uc.log.Warn().Err(relErr).Str("key", in.IdempotencyKey).Msg("liberar clave de idempotencia")
			}
		}
		return nil, err
	}

	recordActivity(ctx, uc.activityRepo, uc.log, &entity.ActivityLog{
		UserID: in.UserID,
		Action: entity.ActionAssemblyCreated,
		Details: map[string]any{
			"assembly_id":   a.ID,
			"assembly_name": a.Name,
			"bom_id":        bom.ID,
			"quantity":      a.Quantity,
			"po_number":     a.PONumber,
		},
		CreatedAt: a.CreatedAt,
	})
	return a, nil
}

func (uc *CreateAssemblyUseCase) newAssembly(bom *entity.BOM, in CreateAssemblyInput) *entity.Assembly {
	now := uc.now()
	name := in.Name
	if name == "" {
		name = fmt.Sprintf("%s %s", bom.Name, now.Format("2006-01-02 15:04"))
	}
	a := &entity.Assembly{
		ID:              uuid.New().String(),
		BOMID:           bom.ID,
		BOMName:         bom.Name,
		AssembledItemID: bom.AssembledItemID,
		Name:            name,
		Quantity:        in.Quantity,
		PONumber:        in.PONumber,
		CreatedBy:       in.UserID,
		CreatedAt:       now,
	}
	a.Units = make([]entity.AssemblyUnit, 0, in.Quantity)
	for n := 1; n <= in.Quantity; n++ {
		a.Units = append(a.Units, entity.AssemblyUnit{
			ID:           uuid.New().String(),
			AssemblyID:   a.ID,
			UnitNumber:   n,
			SerialNumber: domainassembly.SerialNumber(a.ID, n),
		})
	}
	return a
}

// buildUsage genera un registro de consumo por unidad y componente.
func buildUsage(a *entity.Assembly, bom *entity.BOM, lots map[string]*entity.VendorStockLot) []entity.AssemblyComponentUsage {
	usage := make([]entity.AssemblyComponentUsage, 0, len(a.Units)*len(bom.Items))
	for _, u := range a.Units {
		for _, it := range bom.Items {
			lot := lots[it.ComponentItemID]
			usage = append(usage, entity.AssemblyComponentUsage{
				ID:              uuid.New().String(),
				AssemblyID:      a.ID,
				UnitID:          u.ID,
				UnitNumber:      u.UnitNumber,
				SerialNumber:    u.SerialNumber,
				ComponentItemID: it.ComponentItemID,
				ComponentName:   it.ComponentName,
				VendorID:        lot.VendorID,
				VendorName:      lot.VendorName,
				Quantity:        it.QuantityPerUnit,
				SourcePONumber:  lot.LastPONumber,
			})
		}
	}
	return usage
}

// componentError agrega al error el componente, proveedor y cantidad involucrados.
func componentError(err error, it entity.BOMItem, vendorID string, required decimal.Decimal) error {
	vendor := vendorLabel(vendorID)
	name := it.ComponentName
	if name == "" {
		name = it.ComponentItemID
	}
	if errors.Is(err, domain.ErrInsufficientStock) {
		return fmt.Errorf("%w: componente %s, proveedor %s, requerido %s", domain.ErrInsufficientStock, name, vendor, required.String())
	}
	return fmt.Errorf("componente %s, proveedor %s: %w", name, vendor, err)
}

// actingUser resuelve el usuario que actúa: el del token, validando el userId del body si viene.
func actingUser(tokenUserID, bodyUserID string) (string, error) {
	bodyUserID = strings.TrimSpace(bodyUserID)
	if tokenUserID == "" {
		if bodyUserID == "" {
			return "", fmt.Errorf("%w: usuario requerido", domain.ErrInvalidInput)
		}
		return bodyUserID, nil
	}
	if bodyUserID != "" && bodyUserID != tokenUserID {
		return "", fmt.Errorf("%w: userId no coincide con el token", domain.ErrForbidden)
	}
	return tokenUserID, nil
}
