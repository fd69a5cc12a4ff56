// handlers/health.go
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by /health.
const Version = "1.0.0"

// Health reports liveness plus which storage backend is configured.
func Health(backend string, hasJWTSecret bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":       "healthy",
			"timestamp":    time.Now().Unix(),
			"version":      Version,
			"hasJwtSecret": hasJWTSecret,
			"backend":      backend,
		})
	}
}
