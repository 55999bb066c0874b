// Package reporting genera los reportes de solo lectura de un ensamble: la lista de retiro
// (una página por unidad) y la tabla de trazabilidad de componentes.
package reporting

import (
	"context"

	"github.com/jhoicas/Ensamble-api/internal/application/dto"
)

// PicklistPDFGenerator puerto para generar el PDF imprimible de la lista de retiro.
type PicklistPDFGenerator interface {
	GeneratePicklistPDF(ctx context.Context, picklist *dto.PicklistResponse) ([]byte, error)
}

// TraceabilityExporter puerto para exportar la trazabilidad a hoja de cálculo.
type TraceabilityExporter interface {
	ExportTraceability(ctx context.Context, title string, rows []dto.TraceabilityRowDTO) ([]byte, error)
}
