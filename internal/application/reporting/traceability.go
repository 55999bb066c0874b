package reporting

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jhoicas/Ensamble-api/internal/application/dto"
	"github.com/jhoicas/Ensamble-api/internal/domain"
	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
	"github.com/jhoicas/Ensamble-api/pkg/logger"
)

// Formatos de exportación de trazabilidad.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// TraceabilityHeaders encabezados comunes a CSV y XLSX.
var TraceabilityHeaders = []string{"Unidad", "Serial", "Componente", "Cantidad", "Proveedor", "Orden de compra"}

// TraceabilityUseCase tabla plana de consumos: qué componente, cuánto y de qué proveedor/compra.
type TraceabilityUseCase struct {
	assemblyRepo repository.AssemblyRepository
	exporter     TraceabilityExporter
	log          *logger.Logger
}

// NewTraceabilityUseCase construye el caso de uso. exporter puede ser nil (sin XLSX).
func NewTraceabilityUseCase(assemblyRepo repository.AssemblyRepository, exporter TraceabilityExporter, log *logger.Logger) *TraceabilityUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &TraceabilityUseCase{assemblyRepo: assemblyRepo, exporter: exporter, log: log.Named("reporting.traceability")}
}

// Rows devuelve las filas de trazabilidad del ensamble.
func (uc *TraceabilityUseCase) Rows(ctx context.Context, assemblyID string) ([]dto.TraceabilityRowDTO, *entity.Assembly, error) {
	a, err := uc.assemblyRepo.GetByID(ctx, assemblyID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrReportUnavailable, err)
	}
	if a == nil {
		return nil, nil, fmt.Errorf("%w: ensamble %s", domain.ErrNotFound, assemblyID)
	}
	usage, err := uc.assemblyRepo.ListUsage(ctx, assemblyID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrReportUnavailable, err)
	}
	return ToTraceabilityRows(usage), a, nil
}

// Export serializa la trazabilidad en el formato pedido. Devuelve bytes, content-type y nombre de archivo.
func (uc *TraceabilityUseCase) Export(ctx context.Context, assemblyID, format string) ([]byte, string, string, error) {
	rows, a, err := uc.Rows(ctx, assemblyID)
	if err != nil {
		return nil, "", "", err
	}
	base := "trazabilidad-" + a.ID
	switch format {
	case FormatCSV:
		b, err := TraceabilityCSV(rows)
		if err != nil {
			return nil, "", "", fmt.Errorf("%w: %v", domain.ErrReportUnavailable, err)
		}
		return b, "text/csv; charset=utf-8", base + ".csv", nil
	case FormatXLSX:
		if uc.exporter == nil {
			return nil, "", "", fmt.Errorf("%w: exportador XLSX no configurado", domain.ErrReportUnavailable)
		}
		b, err := uc.exporter.ExportTraceability(ctx, a.Name, rows)
		if err != nil {
			uc.log.Warn().Err(err).Str("assembly_id", a.ID).Msg("no se pudo exportar la trazabilidad")
			return nil, "", "", fmt.Errorf("%w: %v", domain.ErrReportUnavailable, err)
		}
		return b, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", base + ".xlsx", nil
	default:
		return nil, "", "", fmt.Errorf("%w: formato %q no soportado (json, csv, xlsx)", domain.ErrInvalidInput, format)
	}
}

// ToTraceabilityRows convierte los consumos en filas planas.
func ToTraceabilityRows(usage []entity.AssemblyComponentUsage) []dto.TraceabilityRowDTO {
	out := make([]dto.TraceabilityRowDTO, 0, len(usage))
	for _, u := range usage {
		var vendorID *string
		if u.VendorID != "" {
			v := u.VendorID
			vendorID = &v
		}
		vendorName := u.VendorName
		if vendorName == "" && u.VendorID == "" {
			vendorName = entity.InternalSourceName
		}
		out = append(out, dto.TraceabilityRowDTO{
			UnitNumber:     u.UnitNumber,
			SerialNumber:   u.SerialNumber,
			ComponentID:    u.ComponentItemID,
			ComponentName:  u.ComponentName,
			Quantity:       u.Quantity,
			VendorID:       vendorID,
			VendorName:     vendorName,
			SourcePONumber: u.SourcePONumber,
		})
	}
	return out
}

// TraceabilityCSV escribe las filas como CSV con encabezado.
func TraceabilityCSV(rows []dto.TraceabilityRowDTO) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(TraceabilityHeaders); err != nil {
		return nil, err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.UnitNumber),
			r.SerialNumber,
			r.ComponentName,
			r.Quantity.String(),
			r.VendorName,
			r.SourcePONumber,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
