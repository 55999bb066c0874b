// Package excel exporta reportes de ensamble a hojas de cálculo XLSX.
package excel

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Ensamble-api/internal/application/dto"
	"github.com/jhoicas/Ensamble-api/internal/application/reporting"
)

const sheetName = "Trazabilidad"

var _ reporting.TraceabilityExporter = (*TraceabilityExporter)(nil)

// TraceabilityExporter genera el XLSX de trazabilidad con excelize.
type TraceabilityExporter struct{}

// NewTraceabilityExporter construye el exportador.
func NewTraceabilityExporter() *TraceabilityExporter { return &TraceabilityExporter{} }

// ExportTraceability escribe título, encabezados y una fila por consumo; devuelve los bytes del archivo.
func (e *TraceabilityExporter) ExportTraceability(_ context.Context, title string, rows []dto.TraceabilityRowDTO) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("xlsx: crear hoja: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("xlsx: eliminar hoja por defecto: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#00467F"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo encabezado: %w", err)
	}
	qtyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr("#,##0.####")})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo cantidad: %w", err)
	}

	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, err
	}
	for i, h := range reporting.TraceabilityHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheetName, "A2", "F2", headerStyle); err != nil {
		return nil, err
	}

	for i, r := range rows {
		row := i + 3
		qty, _ := r.Quantity.Float64()
		values := []any{r.UnitNumber, r.SerialNumber, r.ComponentName, qty, r.VendorName, r.SourcePONumber}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("xlsx: fila %d: %w", row, err)
			}
		}
		qtyCell, _ := excelize.CoordinatesToCellName(4, row)
		if err := f.SetCellStyle(sheetName, qtyCell, qtyCell, qtyStyle); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "B", 18)
	_ = f.SetColWidth(sheetName, "C", "C", 30)
	_ = f.SetColWidth(sheetName, "D", "D", 12)
	_ = f.SetColWidth(sheetName, "E", "F", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx: escribir archivo: %w", err)
	}
	return buf.Bytes(), nil
}

func strPtr(s string) *string { return &s }
