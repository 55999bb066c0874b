package assembly

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/Ensamble-api/internal/domain"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD con repositorios atados a esa tx.
// Si fn retorna error se hace Rollback: ningún descuento ni registro queda persistido.
type TxRunner interface {
	RunAssembly(ctx context.Context, fn func(
		itemRepo repository.InventoryItemRepository,
		stockRepo repository.VendorStockRepository,
		assemblyRepo repository.AssemblyRepository,
	) error) error
}

// IdempotencyStore reserva claves de idempotencia para la creación de ensambles.
type IdempotencyStore interface {
	// Reserve retorna false si la clave ya fue usada.
	Reserve(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Metrics observa el resultado de las operaciones del orquestador.
type Metrics interface {
	ObserveCreate(outcome string, elapsed time.Duration)
	ObserveReverse(outcome string, elapsed time.Duration)
}

// Resultados para métricas.
const (
	OutcomeOK                = "ok"
	OutcomeValidation        = "validation"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeNotFound          = "not_found"
	OutcomeConflict          = "conflict"
	OutcomeError             = "error"
)

// Outcome clasifica un error del orquestador para métricas.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrMissingSource),
		errors.Is(err, domain.ErrSelfReferencingBOM), errors.Is(err, domain.ErrPurchaseOrderClosed):
		return OutcomeValidation
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}

type nopMetrics struct{}

func (nopMetrics) ObserveCreate(string, time.Duration)  {}
func (nopMetrics) ObserveReverse(string, time.Duration) {}
