package assembly

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ensamble-api/internal/application/dto"
	"github.com/jhoicas/Ensamble-api/internal/domain"
	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
	"github.com/jhoicas/Ensamble-api/pkg/logger"
)

// ReverseAssemblyUseCase revierte un ensamble: devuelve cada consumo a su lote de origen,
// descuenta el artículo terminado y elimina consumos, unidades y el ensamble en una sola transacción.
// Solo deshace su propio delta; los movimientos independientes posteriores se conservan.
type ReverseAssemblyUseCase struct {
	txRunner     TxRunner
	activityRepo repository.ActivityLogRepository
	metrics      Metrics
	log          *logger.Logger
}

// NewReverseAssemblyUseCase construye el caso de uso. metrics puede ser nil.
func NewReverseAssemblyUseCase(
	txRunner TxRunner,
	activityRepo repository.ActivityLogRepository,
	metrics Metrics,
	log *logger.Logger,
) *ReverseAssemblyUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReverseAssemblyUseCase{
		txRunner:     txRunner,
		activityRepo: activityRepo,
		metrics:      metrics,
		log:          log.Named("assembly.reverse"),
	}
}

// ReverseAssemblyFromRequest adapta el body HTTP validando el usuario contra el token.
func (uc *ReverseAssemblyUseCase) ReverseAssemblyFromRequest(ctx context.Context, tokenUserID string, in dto.ReverseAssemblyRequest) error {
	userID, err := actingUser(tokenUserID, in.UserID)
	if err != nil {
		return err
	}
	return uc.ReverseAssembly(ctx, in.AssemblyID, userID)
}

// ReverseAssembly ejecuta la reversión completa o ninguna parte de ella.
func (uc *ReverseAssemblyUseCase) ReverseAssembly(ctx context.Context, assemblyID, userID string) error {
	start := time.Now()
	a, err := uc.reverse(ctx, assemblyID, userID)
	uc.metrics.ObserveReverse(Outcome(err), time.Since(start))
	if err != nil {
		uc.log.Warn().Err(err).Str("assembly_id", assemblyID).Str("user_id", userID).Msg("reversión rechazada")
		return err
	}
	uc.log.Info().Str("assembly_id", a.ID).Int("quantity", a.Quantity).Str("user_id", userID).Msg("ensamble revertido")
	return nil
}

type lotKey struct {
	itemID   string
	vendorID string
}

func (uc *ReverseAssemblyUseCase) reverse(ctx context.Context, assemblyID, userID string) (*entity.Assembly, error) {
	if assemblyID == "" {
		return nil, fmt.Errorf("%w: assemblyId requerido", domain.ErrInvalidInput)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: usuario requerido", domain.ErrInvalidInput)
	}

	var reversed *entity.Assembly
	err := uc.txRunner.RunAssembly(ctx, func(
		itemRepo repository.InventoryItemRepository,
		stockRepo repository.VendorStockRepository,
		assemblyRepo repository.AssemblyRepository,
	) error {
		// Bloquea el ensamble: dos reversiones concurrentes no pueden devolver stock dos veces
		a, err := assemblyRepo.GetForUpdate(ctx, assemblyID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%w: ensamble %s", domain.ErrNotFound, assemblyID)
		}

		usage, err := assemblyRepo.ListUsage(ctx, assemblyID)
		if err != nil {
			return err
		}
		restore, byItem := aggregateUsage(usage)
		ids := make([]string, 0, len(byItem)+1)
		for itemID := range byItem {
			ids = append(ids, itemID)
		}
		ids = append(ids, a.AssembledItemID)

		units := decimal.NewFromInt(int64(a.Quantity))
		for _, itemID := range itemLockOrder(ids...) {
			if itemID == a.AssembledItemID {
				if err := removeFinished(ctx, itemRepo, stockRepo, a, units); err != nil {
					return err
				}
				continue
			}
			total := decimal.Zero
			for _, k := range byItem[itemID] {
				qty := restore[k]
				if err := stockRepo.Restore(ctx, k.itemID, k.vendorID, qty); err != nil {
					return fmt.Errorf("devolver %s al lote %s/%s: %w", qty.String(), k.itemID, vendorLabel(k.vendorID), err)
				}
				total = total.Add(qty)
			}
			if err := itemRepo.AdjustStock(ctx, itemID, total); err != nil {
				return fmt.Errorf("devolver %s al artículo %s: %w", total.String(), itemID, err)
			}
		}

		if err := assemblyRepo.Delete(ctx, assemblyID); err != nil {
			return err
		}
		reversed = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordActivity(ctx, uc.activityRepo, uc.log, &entity.ActivityLog{
		UserID: userID,
		Action: entity.ActionAssemblyReversed,
		Details: map[string]any{
			"assembly_id":   reversed.ID,
			"assembly_name": reversed.Name,
			"bom_id":        reversed.BOMID,
			"quantity":      reversed.Quantity,
		},
		CreatedAt: time.Now(),
	})
	return reversed, nil
}

// aggregateUsage suma los consumos por (artículo, proveedor) y agrupa las claves por artículo,
// con los proveedores en orden ascendente.
func aggregateUsage(usage []entity.AssemblyComponentUsage) (map[lotKey]decimal.Decimal, map[string][]lotKey) {
	totals := make(map[lotKey]decimal.Decimal)
	for _, u := range usage {
		k := lotKey{itemID: u.ComponentItemID, vendorID: u.VendorID}
		totals[k] = totals[k].Add(u.Quantity)
	}
	byItem := make(map[string][]lotKey)
	for k := range totals {
		byItem[k.itemID] = append(byItem[k.itemID], k)
	}
	for _, keys := range byItem {
		sort.Slice(keys, func(i, j int) bool { return keys[i].vendorID < keys[j].vendorID })
	}
	return totals, byItem
}

// removeFinished retira del lote interno y del agregado las unidades producidas.
// Si ya se consumieron, la reversión falla con ErrInsufficientStock.
func removeFinished(ctx context.Context, itemRepo repository.InventoryItemRepository, stockRepo repository.VendorStockRepository, a *entity.Assembly, units decimal.Decimal) error {
	if _, err := stockRepo.Reserve(ctx, a.AssembledItemID, "", units); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return fmt.Errorf("%w: el artículo terminado %s ya no tiene %d unidades disponibles para revertir",
				domain.ErrInsufficientStock, a.AssembledItemID, a.Quantity)
		}
		return err
	}
	if err := itemRepo.AdjustStock(ctx, a.AssembledItemID, units.Neg()); err != nil {
		return fmt.Errorf("descontar artículo terminado %s: %w", a.AssembledItemID, err)
	}
	return nil
}

func vendorLabel(vendorID string) string {
	if vendorID == "" {
		return entity.InternalSourceName
	}
	return vendorID
}
