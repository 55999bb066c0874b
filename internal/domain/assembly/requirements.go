// Package assembly contiene la lógica pura del ensamble por BOM: cantidades requeridas,
// filtrado de lotes por proveedor y validación de fuentes. No depende de infraestructura.
package assembly

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ensamble-api/internal/domain"
	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
)

// RequiredQuantity cantidad total de un componente para una corrida: porUnidad × unidades.
func RequiredQuantity(perUnit decimal.Decimal, units int) decimal.Decimal {
	return perUnit.Mul(decimal.NewFromInt(int64(units)))
}

// QualifyingLots devuelve los lotes con disponible >= requerido, en el mismo orden recibido.
// No se admite abastecer un componente desde varios lotes.
func QualifyingLots(lots []entity.VendorStockLot, required decimal.Decimal) []entity.VendorStockLot {
	out := make([]entity.VendorStockLot, 0, len(lots))
	for _, l := range lots {
		if l.Quantity.GreaterThanOrEqual(required) {
			out = append(out, l)
		}
	}
	return out
}

// ComponentRequirement resultado del resolvedor para una línea de la BOM.
type ComponentRequirement struct {
	Item       entity.BOMItem
	Required   decimal.Decimal
	Qualifying []entity.VendorStockLot
}

// Insufficient indica que ningún lote cubre lo requerido (bloquea el envío).
func (r ComponentRequirement) Insufficient() bool { return len(r.Qualifying) == 0 }

// Resolve calcula, para cada componente de la BOM, lo requerido y los lotes que lo cubren.
// lotsByItem indexa los lotes disponibles por ComponentItemID. canSubmit es falso si algún
// componente queda sin lotes calificados: la operación es todo o nada.
func Resolve(bom *entity.BOM, lotsByItem map[string][]entity.VendorStockLot, units int) (reqs []ComponentRequirement, canSubmit bool) {
	canSubmit = units > 0 && len(bom.Items) > 0
	reqs = make([]ComponentRequirement, 0, len(bom.Items))
	for _, it := range bom.Items {
		required := RequiredQuantity(it.QuantityPerUnit, units)
		r := ComponentRequirement{
			Item:       it,
			Required:   required,
			Qualifying: QualifyingLots(lotsByItem[it.ComponentItemID], required),
		}
		if r.Insufficient() {
			canSubmit = false
		}
		reqs = append(reqs, r)
	}
	return reqs, canSubmit
}

// ValidateBOM verifica que la BOM tenga artículo ensamblado, componentes, y que no se contenga a sí misma.
func ValidateBOM(bom *entity.BOM) error {
	if bom.AssembledItemID == "" {
		return fmt.Errorf("%w: la BOM %q no referencia un artículo ensamblado", domain.ErrInvalidInput, bom.Name)
	}
	if len(bom.Items) == 0 {
		return fmt.Errorf("%w: la BOM %q no tiene componentes", domain.ErrInvalidInput, bom.Name)
	}
	if bom.ContainsItem(bom.AssembledItemID) {
		return fmt.Errorf("%w: %s", domain.ErrSelfReferencingBOM, bom.Name)
	}
	return nil
}

// ValidateSources exige exactamente una fuente por componente de la BOM.
// sources mapea ComponentItemID → VendorID ("" = fuente interna); la ausencia de la clave
// significa componente sin fuente. Fuentes para artículos ajenos a la BOM son inválidas.
func ValidateSources(bom *entity.BOM, sources map[string]string) error {
	var missing []string
	for _, it := range bom.Items {
		if _, ok := sources[it.ComponentItemID]; !ok {
			missing = append(missing, componentLabel(it))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingSource, strings.Join(missing, ", "))
	}
	for componentID := range sources {
		if !bom.ContainsItem(componentID) {
			return fmt.Errorf("%w: el componente %s no pertenece a la BOM %q", domain.ErrInvalidInput, componentID, bom.Name)
		}
	}
	return nil
}

// SerialNumber serial de una unidad: id completo del ensamble en mayúsculas y sin guiones,
// más el número de unidad con 4 dígitos. Único mientras lo sea el id del ensamble.
func SerialNumber(assemblyID string, unit int) string {
	prefix := strings.ToUpper(strings.ReplaceAll(assemblyID, "-", ""))
	return fmt.Sprintf("%s-%04d", prefix, unit)
}

func componentLabel(it entity.BOMItem) string {
	if it.ComponentName != "" {
		return it.ComponentName
	}
	return it.ComponentItemID
}
