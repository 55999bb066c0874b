package repository

import (
	"context"

	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
)

// AssemblyRepository persistencia de ensambles, unidades y registros de consumo.
type AssemblyRepository interface {
	// Create inserta el ensamble y sus unidades (assembly.Units).
	Create(ctx context.Context, assembly *entity.Assembly) error
	CreateUsage(ctx context.Context, usage []entity.AssemblyComponentUsage) error
	// GetByID devuelve el ensamble con unidades, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Assembly, error)
	// GetForUpdate como GetByID pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Assembly, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Assembly, error)
	ListUsage(ctx context.Context, assemblyID string) ([]entity.AssemblyComponentUsage, error)
	// Delete elimina consumos, unidades y el ensamble.
	Delete(ctx context.Context, id string) error
}
