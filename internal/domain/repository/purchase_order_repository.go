package repository

import (
	"context"

	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
)

// PurchaseOrderRepository consulta de órdenes de compra (solo lectura desde ensambles).
type PurchaseOrderRepository interface {
	GetByNumber(ctx context.Context, poNumber string) (*entity.PurchaseOrder, error)
}
