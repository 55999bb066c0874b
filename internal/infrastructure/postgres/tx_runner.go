package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Ensamble-api/internal/application/assembly"
	"github.com/jhoicas/Ensamble-api/internal/domain"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
)

var _ assembly.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunAssembly inicia una transacción, ejecuta fn con repos de stock y ensambles atados a la tx
// y hace Commit o Rollback.
func (r *TxRunner) RunAssembly(ctx context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	stockRepo repository.VendorStockRepository,
	assemblyRepo repository.AssemblyRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	itemRepo := NewInventoryItemRepository(tx)
	stockRepo := NewVendorStockRepository(tx)
	assemblyRepo := NewAssemblyRepository(tx)

	if err := fn(itemRepo, stockRepo, assemblyRepo); err != nil {
		if isLockConflict(err) {
			return fmt.Errorf("%w: la transacción chocó con otra operación de stock, reintente", domain.ErrConflict)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isLockConflict(err) {
			return fmt.Errorf("%w: la transacción chocó con otra operación de stock, reintente", domain.ErrConflict)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
