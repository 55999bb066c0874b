package reporting

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ensamble-api/internal/application/dto"
	"github.com/jhoicas/Ensamble-api/internal/domain"
	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
	"github.com/jhoicas/Ensamble-api/pkg/logger"
)

// PicklistUseCase arma la lista de retiro de un ensamble a partir de sus consumos registrados.
type PicklistUseCase struct {
	assemblyRepo repository.AssemblyRepository
	bomRepo      repository.BOMRepository
	generator    PicklistPDFGenerator
	log          *logger.Logger
}

// NewPicklistUseCase construye el caso de uso. generator puede ser nil si no se sirve PDF.
func NewPicklistUseCase(
	assemblyRepo repository.AssemblyRepository,
	bomRepo repository.BOMRepository,
	generator PicklistPDFGenerator,
	log *logger.Logger,
) *PicklistUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PicklistUseCase{
		assemblyRepo: assemblyRepo,
		bomRepo:      bomRepo,
		generator:    generator,
		log:          log.Named("reporting.picklist"),
	}
}

// GetPicklist devuelve la lista de retiro: una página por unidad con sus componentes.
func (uc *PicklistUseCase) GetPicklist(ctx context.Context, assemblyID string) (*dto.PicklistResponse, error) {
	a, err := uc.assemblyRepo.GetByID(ctx, assemblyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReportUnavailable, err)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: ensamble %s", domain.ErrNotFound, assemblyID)
	}
	usage, err := uc.assemblyRepo.ListUsage(ctx, assemblyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReportUnavailable, err)
	}

	// La BOM solo aporta unidades de medida y el nombre del terminado; puede haber sido editada o borrada.
	bom, err := uc.bomRepo.GetByID(ctx, a.BOMID)
	if err != nil {
		uc.log.Warn().Err(err).Str("bom_id", a.BOMID).Msg("lista de retiro sin datos de BOM")
		bom = nil
	}
	return BuildPicklist(a, bom, usage), nil
}

// PicklistPDF genera el PDF de la lista de retiro y un nombre de archivo sugerido.
func (uc *PicklistUseCase) PicklistPDF(ctx context.Context, assemblyID string) ([]byte, string, error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("%w: generador PDF no configurado", domain.ErrReportUnavailable)
	}
	p, err := uc.GetPicklist(ctx, assemblyID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GeneratePicklistPDF(ctx, p)
	if err != nil {
		uc.log.Warn().Err(err).Str("assembly_id", assemblyID).Msg("no se pudo generar el PDF de retiro")
		return nil, "", fmt.Errorf("%w: %v", domain.ErrReportUnavailable, err)
	}
	return pdf, fmt.Sprintf("picklist-%s.pdf", assemblyID), nil
}

// BuildPicklist agrupa los consumos por unidad en el orden de las unidades del ensamble.
func BuildPicklist(a *entity.Assembly, bom *entity.BOM, usage []entity.AssemblyComponentUsage) *dto.PicklistResponse {
	units := make(map[string]string)
	assembled := a.AssembledItemID
	if bom != nil {
		for _, it := range bom.Items {
			units[it.ComponentItemID] = it.Unit
		}
		if bom.AssembledItemName != "" {
			assembled = bom.AssembledItemName
		}
	}

	byUnit := make(map[string][]dto.PicklistLineDTO, len(a.Units))
	for _, u := range usage {
		byUnit[u.UnitID] = append(byUnit[u.UnitID], dto.PicklistLineDTO{
			ComponentID:     u.ComponentItemID,
			ComponentName:   u.ComponentName,
			Unit:            units[u.ComponentItemID],
			QuantityPerUnit: u.Quantity,
			VendorName:      u.VendorName,
		})
	}

	out := &dto.PicklistResponse{
		AssemblyID:    a.ID,
		AssemblyName:  a.Name,
		BOMName:       a.BOMName,
		AssembledItem: assembled,
		Pages:         make([]dto.PicklistPageDTO, 0, len(a.Units)),
	}
	for _, u := range a.Units {
		lines := byUnit[u.ID]
		if lines == nil {
			lines = []dto.PicklistLineDTO{}
		}
		out.Pages = append(out.Pages, dto.PicklistPageDTO{
			UnitNumber:   u.UnitNumber,
			TotalUnits:   a.Quantity,
			SerialNumber: u.SerialNumber,
			Lines:        lines,
		})
	}
	return out
}
