// Package pdf genera la lista de retiro imprimible de un ensamble.
//
// Una página A4 por unidad:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Ensamble + BOM      │  Unidad n de N + Serial      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Componente | Cant. | Unidad | Proveedor | Retirado  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: firmas de quien retira y quien verifica            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/Ensamble-api/internal/application/dto"
	"github.com/jhoicas/Ensamble-api/internal/application/reporting"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ reporting.PicklistPDFGenerator = (*MarotoPicklistGenerator)(nil)

// MarotoPicklistGenerator implementa reporting.PicklistPDFGenerator usando Maroto v2.
type MarotoPicklistGenerator struct {
	printer *message.Printer
}

// NewMarotoPicklistGenerator construye el generador. Las cantidades se formatean en español.
func NewMarotoPicklistGenerator() *MarotoPicklistGenerator {
	return &MarotoPicklistGenerator{printer: message.NewPrinter(language.Spanish)}
}

// GeneratePicklistPDF genera una página por unidad y devuelve los bytes del documento.
func (g *MarotoPicklistGenerator) GeneratePicklistPDF(_ context.Context, p *dto.PicklistResponse) ([]byte, error) {
	if len(p.Pages) == 0 {
		return nil, fmt.Errorf("pdf: el ensamble %s no tiene unidades", p.AssemblyID)
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Lista de retiro "+p.AssemblyName, true).
		Build()

	m := maroto.New(cfg)

	pages := make([]core.Page, 0, len(p.Pages))
	for _, pg := range p.Pages {
		rows := []core.Row{
			headerRow(p, pg),
			line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}),
			tableHeaderRow(),
		}
		rows = append(rows, g.lineRows(pg.Lines)...)
		rows = append(rows,
			line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}),
			row.New(20),
			signatureRow(),
		)
		pages = append(pages, page.New().Add(rows...))
	}
	m.AddPages(pages...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: ensamble y BOM (izq), unidad n de N y serial (der).
func headerRow(p *dto.PicklistResponse, pg dto.PicklistPageDTO) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(p.AssemblyName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("BOM: "+p.BOMName+"   |   Artículo: "+p.AssembledItem, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("LISTA DE RETIRO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Unidad %d de %d", pg.UnitNumber, pg.TotalUnits), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Serial: "+pg.SerialNumber, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Componente", 5, align.Left),
		h("Cant.", 2, align.Right),
		h("Unidad", 1, align.Center),
		h("Proveedor", 3, align.Left),
		h("OK", 1, align.Center),
	)
}

// lineRows: una fila por componente a retirar.
func (g *MarotoPicklistGenerator) lineRows(lines []dto.PicklistLineDTO) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		out = append(out, row.New(7).Add(
			col.New(5).Add(text.New(l.ComponentName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.formatQuantity(l.QuantityPerUnit), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(l.Unit, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(l.VendorName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New("[  ]", props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	return out
}

func signatureRow() core.Row {
	sig := func(label string) core.Col {
		return col.New(6).Add(text.New("______________________________\n"+label, props.Text{
			Size: 8, Align: align.Center, Color: colorGray,
		}))
	}
	return row.New(12).Add(sig("Retiró"), sig("Verificó"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatQuantity formatea con separadores locales y hasta 4 decimales. Ej: 12500.5 → "12.500,5".
func (g *MarotoPicklistGenerator) formatQuantity(d decimal.Decimal) string {
	f, _ := d.Float64()
	return g.printer.Sprint(number.Decimal(f, number.MaxFractionDigits(4)))
}
