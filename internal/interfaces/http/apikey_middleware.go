package http

import (
	"crypto/subtle"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Ensamble-api/internal/application/dto"
)

// APIKeyMiddleware exige la llave de API en el header apikey o X-API-Key y la compara
// con el hash bcrypt configurado. Con hash vacío el middleware no filtra.
// La última llave válida se recuerda para no pagar bcrypt en cada solicitud.
func APIKeyMiddleware(hash string) fiber.Handler {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	var (
		mu       sync.RWMutex
		verified []byte
	)
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get("apikey"))
		if key == "" {
			key = strings.TrimSpace(c.Get("X-API-Key"))
		}
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.NewError("MISSING_API_KEY", "header apikey requerido"))
		}

		mu.RLock()
		cached := verified != nil && subtle.ConstantTimeCompare(verified, []byte(key)) == 1
		mu.RUnlock()
		if cached {
			return c.Next()
		}

		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.NewError("INVALID_API_KEY", "llave de API inválida"))
		}
		mu.Lock()
		verified = []byte(key)
		mu.Unlock()
		return c.Next()
	}
}
