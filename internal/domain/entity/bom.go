package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BOM lista de materiales: un artículo terminado y los componentes necesarios por unidad.
type BOM struct {
	ID                string
	Name              string
	AssembledItemID   string
	AssembledItemName string
	Items             []BOMItem
	CreatedAt         time.Time
}

// BOMItem línea de la BOM (componente + cantidad por unidad ensamblada).
type BOMItem struct {
	ID              string
	BOMID           string
	ComponentItemID string
	ComponentName   string
	Unit            string
	QuantityPerUnit decimal.Decimal
}

// ContainsItem indica si itemID figura como componente de la BOM.
func (b *BOM) ContainsItem(itemID string) bool {
	for _, it := range b.Items {
		if it.ComponentItemID == itemID {
			return true
		}
	}
	return false
}
