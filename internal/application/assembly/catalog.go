package assembly

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ensamble-api/internal/application/dto"
	"github.com/jhoicas/Ensamble-api/internal/domain"
	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
)

// CatalogUseCase consultas de BOMs y ensambles existentes.
type CatalogUseCase struct {
	bomRepo      repository.BOMRepository
	assemblyRepo repository.AssemblyRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(bomRepo repository.BOMRepository, assemblyRepo repository.AssemblyRepository) *CatalogUseCase {
	return &CatalogUseCase{bomRepo: bomRepo, assemblyRepo: assemblyRepo}
}

// ListBOMs lista BOMs con paginación.
func (uc *CatalogUseCase) ListBOMs(ctx context.Context, page dto.PageRequest) ([]dto.BOMResponse, error) {
	page.DefaultPage()
	list, err := uc.bomRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BOMResponse, 0, len(list))
	for _, b := range list {
		out = append(out, ToBOMResponse(b))
	}
	return out, nil
}

// GetBOM obtiene una BOM con sus componentes.
func (uc *CatalogUseCase) GetBOM(ctx context.Context, id string) (*dto.BOMResponse, error) {
	b, err := uc.bomRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: BOM %s", domain.ErrNotFound, id)
	}
	resp := ToBOMResponse(b)
	return &resp, nil
}

// ListAssemblies lista ensambles, más recientes primero.
func (uc *CatalogUseCase) ListAssemblies(ctx context.Context, page dto.PageRequest) ([]dto.AssemblyResponse, error) {
	page.DefaultPage()
	list, err := uc.assemblyRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AssemblyResponse, 0, len(list))
	for _, a := range list {
		out = append(out, ToAssemblyResponse(a))
	}
	return out, nil
}

// GetAssembly obtiene un ensamble con sus unidades.
func (uc *CatalogUseCase) GetAssembly(ctx context.Context, id string) (*dto.AssemblyResponse, error) {
	a, err := uc.assemblyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: ensamble %s", domain.ErrNotFound, id)
	}
	resp := ToAssemblyResponse(a)
	return &resp, nil
}

// ToAssemblyResponse mapea la entidad al DTO de respuesta.
func ToAssemblyResponse(a *entity.Assembly) dto.AssemblyResponse {
	resp := dto.AssemblyResponse{
		ID:              a.ID,
		BOMID:           a.BOMID,
		BOMName:         a.BOMName,
		AssembledItemID: a.AssembledItemID,
		AssemblyName:    a.Name,
		Quantity:        a.Quantity,
		PONumber:        nullable(a.PONumber),
		CreatedBy:       a.CreatedBy,
		CreatedAt:       a.CreatedAt,
	}
	for _, u := range a.Units {
		resp.Units = append(resp.Units, dto.AssemblyUnitDTO{ID: u.ID, UnitNumber: u.UnitNumber, SerialNumber: u.SerialNumber})
	}
	return resp
}

// ToBOMResponse mapea la entidad al DTO de respuesta.
func ToBOMResponse(b *entity.BOM) dto.BOMResponse {
	resp := dto.BOMResponse{
		ID:                b.ID,
		Name:              b.Name,
		AssembledItemID:   b.AssembledItemID,
		AssembledItemName: b.AssembledItemName,
		Items:             make([]dto.BOMItemDTO, 0, len(b.Items)),
		CreatedAt:         b.CreatedAt,
	}
	for _, it := range b.Items {
		resp.Items = append(resp.Items, dto.BOMItemDTO{
			ComponentID:     it.ComponentItemID,
			ComponentName:   it.ComponentName,
			Unit:            it.Unit,
			QuantityPerUnit: it.QuantityPerUnit,
		})
	}
	return resp
}
