package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ensamble-api/pkg/logger"
)

// RequestObserver recibe cada solicitud terminada (métricas).
type RequestObserver interface {
	ObserveRequest(method, route string, status int)
}

// RequestLogger registra método, ruta, estado y latencia de cada solicitud.
// observer puede ser nil.
func RequestLogger(log *logger.Logger, observer RequestObserver) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// El ErrorHandler de Fiber escribe la respuesta; se invoca aquí para loguear el estado final.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		route := c.Route().Path

		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("solicitud HTTP")

		if observer != nil {
			observer.ObserveRequest(c.Method(), route, status)
		}
		return nil
	}
}
