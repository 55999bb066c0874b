package repository

import (
	"context"

	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
)

// BOMRepository lectura del catálogo de listas de materiales.
type BOMRepository interface {
	// GetByID devuelve la BOM con sus líneas, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.BOM, error)
	List(ctx context.Context, limit, offset int) ([]*entity.BOM, error)
}
