package assembly

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ensamble-api/internal/application/dto"
	"github.com/jhoicas/Ensamble-api/internal/domain"
	domainassembly "github.com/jhoicas/Ensamble-api/internal/domain/assembly"
	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
)

// AvailabilityUseCase resolvedor de disponibilidad por proveedor para una corrida.
// Es solo lectura: el descuento real se vuelve a validar dentro de la transacción de creación.
type AvailabilityUseCase struct {
	bomRepo   repository.BOMRepository
	stockRepo repository.VendorStockRepository
}

// NewAvailabilityUseCase construye el caso de uso.
func NewAvailabilityUseCase(bomRepo repository.BOMRepository, stockRepo repository.VendorStockRepository) *AvailabilityUseCase {
	return &AvailabilityUseCase{bomRepo: bomRepo, stockRepo: stockRepo}
}

// VendorAvailability devuelve la disponibilidad por proveedor de un artículo.
func (uc *AvailabilityUseCase) VendorAvailability(ctx context.Context, itemID string) ([]dto.VendorLotDTO, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	lots, err := uc.stockRepo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return toVendorLotDTOs(lots), nil
}

// ResolveForBOM calcula lo requerido por componente y los proveedores que lo cubren para units unidades.
// CanSubmit es falso si algún componente no tiene proveedores calificados.
func (uc *AvailabilityUseCase) ResolveForBOM(ctx context.Context, bomID string, units int) (*dto.AvailabilityResponse, error) {
	if bomID == "" {
		return nil, fmt.Errorf("%w: seleccione una BOM", domain.ErrInvalidInput)
	}
	if units <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser un entero positivo", domain.ErrInvalidInput)
	}
	bom, err := uc.bomRepo.GetByID(ctx, bomID)
	if err != nil {
		return nil, err
	}
	if bom == nil {
		return nil, fmt.Errorf("%w: BOM %s", domain.ErrNotFound, bomID)
	}

	lotsByItem := make(map[string][]entity.VendorStockLot, len(bom.Items))
	for _, it := range bom.Items {
		if _, seen := lotsByItem[it.ComponentItemID]; seen {
			continue
		}
		lots, err := uc.stockRepo.ListByItem(ctx, it.ComponentItemID)
		if err != nil {
			return nil, err
		}
		lotsByItem[it.ComponentItemID] = lots
	}

	reqs, canSubmit := domainassembly.Resolve(bom, lotsByItem, units)
	out := &dto.AvailabilityResponse{
		BOMID:      bom.ID,
		Quantity:   units,
		CanSubmit:  canSubmit,
		Components: make([]dto.ComponentAvailabilityDTO, 0, len(reqs)),
	}
	for _, r := range reqs {
		out.Components = append(out.Components, dto.ComponentAvailabilityDTO{
			ComponentID:     r.Item.ComponentItemID,
			ComponentName:   r.Item.ComponentName,
			Unit:            r.Item.Unit,
			QuantityPerUnit: r.Item.QuantityPerUnit,
			Required:        r.Required,
			Insufficient:    r.Insufficient(),
			Vendors:         toVendorLotDTOs(r.Qualifying),
		})
	}
	return out, nil
}

func toVendorLotDTOs(lots []entity.VendorStockLot) []dto.VendorLotDTO {
	out := make([]dto.VendorLotDTO, 0, len(lots))
	for _, l := range lots {
		out = append(out, dto.VendorLotDTO{
			VendorID:   nullable(l.VendorID),
			VendorName: l.VendorName,
			Available:  l.Quantity,
		})
	}
	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
