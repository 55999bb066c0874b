package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem artículo del inventario. CurrentStock es el agregado de todos los lotes por proveedor
// y nunca es negativo (no se modelan pedidos pendientes).
type InventoryItem struct {
	ID            string
	Name          string
	Unit          string
	Group         string
	Class         string
	MinStock      decimal.Decimal
	MaxStock      decimal.Decimal
	ReorderPoint  decimal.Decimal
	CurrentStock  decimal.Decimal
	SerialTracked bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
