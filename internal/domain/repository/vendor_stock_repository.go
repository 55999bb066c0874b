package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
)

// VendorStockRepository puerto de los lotes de stock por proveedor.
// vendorID vacío identifica la fuente interna.
type VendorStockRepository interface {
	// ListByItem devuelve la disponibilidad por proveedor de un artículo.
	ListByItem(ctx context.Context, itemID string) ([]entity.VendorStockLot, error)
	// Reserve descuenta qty del lote solo si alcanza (decremento condicional, sin leer-y-escribir).
	// Retorna el lote ya descontado, o domain.ErrInsufficientStock si no alcanza o no existe.
	Reserve(ctx context.Context, itemID, vendorID string, qty decimal.Decimal) (*entity.VendorStockLot, error)
	// Restore devuelve qty al lote; si el lote ya no existe lo recrea.
	Restore(ctx context.Context, itemID, vendorID string, qty decimal.Decimal) error
}
