package repository

import (
	"context"

	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
)

// ActivityLogRepository sumidero append-only de la bitácora.
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *entity.ActivityLog) error
}
