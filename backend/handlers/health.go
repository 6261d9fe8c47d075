package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthCheck reports service liveness and duck pool size.
func HealthCheck(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := app.Ducks.Count(c.Context())
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
		}

		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": app.Version,
			"ducks":   count,
		})
	}
}
