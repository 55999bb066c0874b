package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ensamble-api/internal/domain"
	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
)

var _ repository.VendorStockRepository = (*VendorStockRepo)(nil)

// VendorStockRepo lotes de stock por proveedor. vendor_id NULL es la fuente interna.
type VendorStockRepo struct {
	q Querier
}

// NewVendorStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVendorStockRepository(q Querier) *VendorStockRepo {
	return &VendorStockRepo{q: q}
}

// ListByItem lista los lotes con disponible > 0 del artículo; la fuente interna primero.
func (r *VendorStockRepo) ListByItem(ctx context.Context, itemID string) ([]entity.VendorStockLot, error) {
	query := `
		SELECT vs.id, vs.item_id, vs.vendor_id::text, COALESCE(v.name, $2), vs.quantity,
		       vs.last_po_number, vs.updated_at
		FROM vendor_stock vs
		LEFT JOIN vendors v ON v.id = vs.vendor_id
		WHERE vs.item_id = $1 AND vs.quantity > 0
		ORDER BY vs.vendor_id NULLS FIRST, v.name`
	rows, err := r.q.Query(ctx, query, itemID, entity.InternalSourceName)
	if err != nil {
		return nil, fmt.Errorf("list vendor stock: %w", err)
	}
	defer rows.Close()

	var out []entity.VendorStockLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vendor stock: %w", err)
		}
		out = append(out, *lot)
	}
	return out, rows.Err()
}

// Reserve descuenta qty del lote con un UPDATE condicional (quantity >= qty). Si ninguna fila
// cumple, el lote no existe o no alcanza y se retorna domain.ErrInsufficientStock.
func (r *VendorStockRepo) Reserve(ctx context.Context, itemID, vendorID string, qty decimal.Decimal) (*entity.VendorStockLot, error) {
	query := `
		WITH upd AS (
			UPDATE vendor_stock
			SET quantity = quantity - $3, updated_at = now()
			WHERE item_id = $1 AND vendor_id IS NOT DISTINCT FROM $2::uuid AND quantity >= $3
			RETURNING id, item_id, vendor_id, quantity, last_po_number, updated_at
		)
		SELECT upd.id, upd.item_id, upd.vendor_id::text, COALESCE(v.name, $4), upd.quantity,
		       upd.last_po_number, upd.updated_at
		FROM upd LEFT JOIN vendors v ON v.id = upd.vendor_id`
	lot, err := scanLot(r.q.QueryRow(ctx, query, itemID, nullableText(vendorID), qty, entity.InternalSourceName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInsufficientStock
		}
		return nil, fmt.Errorf("reserve vendor stock: %w", err)
	}
	return lot, nil
}

// Restore devuelve qty al lote (upsert): si el lote fue eliminado se recrea.
// Si el proveedor ya no existe la llave foránea falla con domain.ErrConflict.
func (r *VendorStockRepo) Restore(ctx context.Context, itemID, vendorID string, qty decimal.Decimal) error {
	query := `
		INSERT INTO vendor_stock (id, item_id, vendor_id, quantity, updated_at)
		VALUES ($1, $2, $3::uuid, $4, now())
		ON CONFLICT (item_id, vendor_id)
		DO UPDATE SET quantity = vendor_stock.quantity + EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(ctx, query, uuid.New().String(), itemID, nullableText(vendorID), qty)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el artículo o proveedor del lote ya no existe", domain.ErrConflict)
		}
		return fmt.Errorf("restore vendor stock: %w", err)
	}
	return nil
}

func scanLot(row pgx.Row) (*entity.VendorStockLot, error) {
	var (
		l        entity.VendorStockLot
		vendorID *string
		lastPO   *string
	)
	if err := row.Scan(&l.ID, &l.ItemID, &vendorID, &l.VendorName, &l.Quantity, &lastPO, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.VendorID = textOrEmpty(vendorID)
	l.LastPONumber = textOrEmpty(lastPO)
	return &l, nil
}
