package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
)

var _ repository.BOMRepository = (*BOMRepo)(nil)

// BOMRepo lectura de BOMs y sus líneas.
type BOMRepo struct {
	q Querier
}

// NewBOMRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBOMRepository(q Querier) *BOMRepo {
	return &BOMRepo{q: q}
}

const bomColumns = `b.id, b.name, b.assembled_item_id, COALESCE(i.name, ''), b.created_at`

// GetByID obtiene la BOM con sus componentes; nil si no existe.
func (r *BOMRepo) GetByID(ctx context.Context, id string) (*entity.BOM, error) {
	query := `
		SELECT ` + bomColumns + `
		FROM boms b
		LEFT JOIN inventory_items i ON i.id = b.assembled_item_id
		WHERE b.id = $1`
	var b entity.BOM
	err := r.q.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.AssembledItemID, &b.AssembledItemName, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bom: %w", err)
	}

	items, err := r.itemsFor(ctx, []string{b.ID})
	if err != nil {
		return nil, err
	}
	b.Items = items[b.ID]
	return &b, nil
}

// List lista BOMs por nombre con sus componentes.
func (r *BOMRepo) List(ctx context.Context, limit, offset int) ([]*entity.BOM, error) {
	query := `
		SELECT ` + bomColumns + `
		FROM boms b
		LEFT JOIN inventory_items i ON i.id = b.assembled_item_id
		ORDER BY b.name, b.id
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list boms: %w", err)
	}
	defer rows.Close()

	var (
		list []*entity.BOM
		ids  []string
	)
	for rows.Next() {
		var b entity.BOM
		if err := rows.Scan(&b.ID, &b.Name, &b.AssembledItemID, &b.AssembledItemName, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bom: %w", err)
		}
		list = append(list, &b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list boms: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, b := range list {
		b.Items = items[b.ID]
	}
	return list, nil
}

// itemsFor carga las líneas de varias BOMs en una sola consulta, indexadas por bom_id.
func (r *BOMRepo) itemsFor(ctx context.Context, bomIDs []string) (map[string][]entity.BOMItem, error) {
	query := `
		SELECT bi.id, bi.bom_id, bi.component_item_id, COALESCE(i.name, ''), COALESCE(i.unit, ''), bi.quantity_per_unit
		FROM bom_items bi
		LEFT JOIN inventory_items i ON i.id = bi.component_item_id
		WHERE bi.bom_id = ANY($1::uuid[])
		ORDER BY bi.bom_id, i.name, bi.id`
	rows, err := r.q.Query(ctx, query, bomIDs)
	if err != nil {
		return nil, fmt.Errorf("list bom items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]entity.BOMItem, len(bomIDs))
	for rows.Next() {
		var it entity.BOMItem
		if err := rows.Scan(&it.ID, &it.BOMID, &it.ComponentItemID, &it.ComponentName, &it.Unit, &it.QuantityPerUnit); err != nil {
			return nil, fmt.Errorf("scan bom item: %w", err)
		}
		out[it.BOMID] = append(out[it.BOMID], it)
	}
	return out, rows.Err()
}
