package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InternalSourceName nombre mostrado para el lote sin proveedor (producción propia o sin atribuir).
const InternalSourceName = "Interno"

// VendorStockLot stock de un artículo atribuible a un proveedor.
// VendorID vacío representa la fuente interna (vendor_id NULL en la tabla).
type VendorStockLot struct {
	ID           string
	ItemID       string
	VendorID     string
	VendorName   string
	Quantity     decimal.Decimal
	LastPONumber string // última orden de compra que abasteció el lote
	UpdatedAt    time.Time
}

// IsInternal indica si el lote corresponde a la fuente interna.
func (l VendorStockLot) IsInternal() bool { return l.VendorID == "" }

// Vendor proveedor registrado.
type Vendor struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt time.Time
}
