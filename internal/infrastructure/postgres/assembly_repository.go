package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Ensamble-api/internal/domain"
	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
)

var _ repository.AssemblyRepository = (*AssemblyRepo)(nil)

// AssemblyRepo persistencia de ensambles, unidades y consumos (usable con pool o tx).
type AssemblyRepo struct {
	q Querier
}

// NewAssemblyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAssemblyRepository(q Querier) *AssemblyRepo {
	return &AssemblyRepo{q: q}
}

// Create inserta el ensamble y sus unidades.
func (r *AssemblyRepo) Create(ctx context.Context, a *entity.Assembly) error {
	query := `
		INSERT INTO assemblies (id, bom_id, assembled_item_id, assembly_name, quantity, po_number, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.BOMID, a.AssembledItemID, a.Name, a.Quantity, nullableText(a.PONumber), a.CreatedBy, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: la BOM o el artículo terminado ya no existe", domain.ErrConflict)
		}
		return fmt.Errorf("insert assembly: %w", err)
	}
	if len(a.Units) == 0 {
		return nil
	}

	ids := make([]string, len(a.Units))
	numbers := make([]int32, len(a.Units))
	serials := make([]string, len(a.Units))
	for i, u := range a.Units {
		ids[i], numbers[i], serials[i] = u.ID, int32(u.UnitNumber), u.SerialNumber
	}
	unitsQuery := `
		INSERT INTO assembly_units (id, assembly_id, unit_number, serial_number)
		SELECT u.id::uuid, $1, u.unit_number, u.serial_number
		FROM unnest($2::text[], $3::int[], $4::text[]) AS u(id, unit_number, serial_number)`
	if _, err := r.q.Exec(ctx, unitsQuery, a.ID, ids, numbers, serials); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: serial de unidad repetido", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert assembly units: %w", err)
	}
	return nil
}

// CreateUsage inserta los registros de consumo en un solo INSERT … SELECT unnest.
func (r *AssemblyRepo) CreateUsage(ctx context.Context, usage []entity.AssemblyComponentUsage) error {
	if len(usage) == 0 {
		return nil
	}
	n := len(usage)
	var (
		ids        = make([]string, n)
		assemblies = make([]string, n)
		units      = make([]string, n)
		items      = make([]string, n)
		vendors    = make([]*string, n)
		quantities = make([]string, n)
		pos        = make([]*string, n)
	)
	for i, u := range usage {
		ids[i], assemblies[i], units[i], items[i] = u.ID, u.AssemblyID, u.UnitID, u.ComponentItemID
		vendors[i] = nullableText(u.VendorID)
		quantities[i] = u.Quantity.String()
		pos[i] = nullableText(u.SourcePONumber)
	}
	query := `
		INSERT INTO assembly_component_usage (id, assembly_id, unit_id, component_item_id, vendor_id, quantity, source_po_number)
		SELECT u.id::uuid, u.assembly_id::uuid, u.unit_id::uuid, u.item_id::uuid, u.vendor_id::uuid, u.quantity, u.po
		FROM unnest($1::text[], $2::text[], $3::text[], $4::text[], $5::text[], $6::numeric[], $7::text[])
		     AS u(id, assembly_id, unit_id, item_id, vendor_id, quantity, po)`
	if _, err := r.q.Exec(ctx, query, ids, assemblies, units, items, vendors, quantities, pos); err != nil {
		return fmt.Errorf("insert component usage: %w", err)
	}
	return nil
}

const assemblySelect = `
	SELECT a.id, a.bom_id, COALESCE(b.name, ''), a.assembled_item_id, a.assembly_name, a.quantity,
	       a.po_number, a.created_by, a.created_at
	FROM assemblies a
	LEFT JOIN boms b ON b.id = a.bom_id`

// GetByID obtiene el ensamble con sus unidades; nil si no existe.
func (r *AssemblyRepo) GetByID(ctx context.Context, id string) (*entity.Assembly, error) {
	return r.get(ctx, assemblySelect+` WHERE a.id = $1`, id)
}

// GetForUpdate obtiene el ensamble bloqueando su fila hasta el fin de la tx.
func (r *AssemblyRepo) GetForUpdate(ctx context.Context, id string) (*entity.Assembly, error) {
	return r.get(ctx, assemblySelect+` WHERE a.id = $1 FOR UPDATE OF a`, id)
}

func (r *AssemblyRepo) get(ctx context.Context, query, id string) (*entity.Assembly, error) {
	a, err := scanAssembly(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assembly: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, assembly_id, unit_number, serial_number
		FROM assembly_units WHERE assembly_id = $1
		ORDER BY unit_number`, id)
	if err != nil {
		return nil, fmt.Errorf("list assembly units: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u entity.AssemblyUnit
		if err := rows.Scan(&u.ID, &u.AssemblyID, &u.UnitNumber, &u.SerialNumber); err != nil {
			return nil, fmt.Errorf("scan assembly unit: %w", err)
		}
		a.Units = append(a.Units, u)
	}
	return a, rows.Err()
}

// List lista ensambles, más recientes primero (sin unidades).
func (r *AssemblyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Assembly, error) {
	rows, err := r.q.Query(ctx, assemblySelect+` ORDER BY a.created_at DESC, a.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list assemblies: %w", err)
	}
	defer rows.Close()

	var out []*entity.Assembly
	for rows.Next() {
		a, err := scanAssembly(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assembly: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListUsage lista los consumos del ensamble con nombres de componente y proveedor.
func (r *AssemblyRepo) ListUsage(ctx context.Context, assemblyID string) ([]entity.AssemblyComponentUsage, error) {
	query := `
		SELECT cu.id, cu.assembly_id, cu.unit_id, u.unit_number, u.serial_number,
		       cu.component_item_id, COALESCE(i.name, ''), cu.vendor_id::text, COALESCE(v.name, $2),
		       cu.quantity, cu.source_po_number
		FROM assembly_component_usage cu
		JOIN assembly_units u ON u.id = cu.unit_id
		LEFT JOIN inventory_items i ON i.id = cu.component_item_id
		LEFT JOIN vendors v ON v.id = cu.vendor_id
		WHERE cu.assembly_id = $1
		ORDER BY u.unit_number, i.name, cu.id`
	rows, err := r.q.Query(ctx, query, assemblyID, entity.InternalSourceName)
	if err != nil {
		return nil, fmt.Errorf("list component usage: %w", err)
	}
	defer rows.Close()

	var out []entity.AssemblyComponentUsage
	for rows.Next() {
		var (
			cu       entity.AssemblyComponentUsage
			vendorID *string
			po       *string
		)
		if err := rows.Scan(&cu.ID, &cu.AssemblyID, &cu.UnitID, &cu.UnitNumber, &cu.SerialNumber,
			&cu.ComponentItemID, &cu.ComponentName, &vendorID, &cu.VendorName, &cu.Quantity, &po); err != nil {
			return nil, fmt.Errorf("scan component usage: %w", err)
		}
		cu.VendorID = textOrEmpty(vendorID)
		cu.SourcePONumber = textOrEmpty(po)
		out = append(out, cu)
	}
	return out, rows.Err()
}

// Delete elimina consumos, unidades y el ensamble, en ese orden.
func (r *AssemblyRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM assembly_component_usage WHERE assembly_id = $1`, id); err != nil {
		return fmt.Errorf("delete component usage: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM assembly_units WHERE assembly_id = $1`, id); err != nil {
		return fmt.Errorf("delete assembly units: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM assemblies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assembly: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ensamble %s", domain.ErrNotFound, id)
	}
	return nil
}

func scanAssembly(row pgx.Row) (*entity.Assembly, error) {
	var (
		a  entity.Assembly
		po *string
	)
	if err := row.Scan(&a.ID, &a.BOMID, &a.BOMName, &a.AssembledItemID, &a.Name, &a.Quantity,
		&po, &a.CreatedBy, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.PONumber = textOrEmpty(po)
	return &a, nil
}
