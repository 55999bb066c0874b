package entity

import "time"

// Estados de orden de compra.
const (
	POStatusOpen      = "open"
	POStatusClosed    = "closed"
	POStatusCancelled = "cancelled"
)

// PurchaseOrder orden de compra; un ensamble puede etiquetarse con una orden abierta.
type PurchaseOrder struct {
	ID        string
	PONumber  string
	VendorID  string
	Status    string
	CreatedAt time.Time
}
