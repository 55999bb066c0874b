package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ensamble-api/internal/domain"
	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación de InventoryItemRepository sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

// GetByID obtiene un artículo por ID; nil si no existe.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	query := `
		SELECT id, name, unit, item_group, item_class, min_stock, max_stock, reorder_point,
		       current_stock, serial_tracked, created_at, updated_at
		FROM inventory_items WHERE id = $1`
	var it entity.InventoryItem
	err := r.q.QueryRow(ctx, query, id).Scan(
		&it.ID, &it.Name, &it.Unit, &it.Group, &it.Class, &it.MinStock, &it.MaxStock, &it.ReorderPoint,
		&it.CurrentStock, &it.SerialTracked, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return &it, nil
}

// AdjustStock suma delta a current_stock en un solo UPDATE condicional (nunca queda negativo).
func (r *InventoryItemRepo) AdjustStock(ctx context.Context, itemID string, delta decimal.Decimal) error {
	query := `
		UPDATE inventory_items
		SET current_stock = current_stock + $2, updated_at = now()
		WHERE id = $1 AND current_stock + $2 >= 0`
	tag, err := r.q.Exec(ctx, query, itemID, delta)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM inventory_items WHERE id = $1)`, itemID).Scan(&exists); err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: artículo %s", domain.ErrNotFound, itemID)
	}
	return domain.ErrInsufficientStock
}
