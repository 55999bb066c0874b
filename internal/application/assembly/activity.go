package assembly

import (
	"context"

	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
	"github.com/jhoicas/Ensamble-api/internal/domain/repository"
	"github.com/jhoicas/Ensamble-api/pkg/logger"
)

// recordActivity agrega la entrada a la bitácora después del commit. Un fallo aquí solo se registra:
// el ensamble ya quedó persistido.
func recordActivity(ctx context.Context, repo repository.ActivityLogRepository, log *logger.Logger, entry *entity.ActivityLog) {
	if repo == nil {
		return
	}
	if err := repo.Append(context.WithoutCancel(ctx), entry); err != nil {
		log.Error().Err(err).Str("action", entry.Action).Str("user_id", entry.UserID).Msg("no se pudo registrar la bitácora")
	}
}
