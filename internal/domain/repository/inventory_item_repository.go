package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
)

// InventoryItemRepository puerto del stock agregado por artículo.
type InventoryItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// AdjustStock suma delta (positivo o negativo) a current_stock de forma atómica.
	// Retorna domain.ErrInsufficientStock si el resultado sería negativo y domain.ErrNotFound si no existe.
	AdjustStock(ctx context.Context, itemID string, delta decimal.Decimal) error
}
