package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/duckbook/duckbook/backend/models"
	"github.com/duckbook/duckbook/backend/services"
	"github.com/duckbook/duckbook/backend/utils"
)

// AuthRequired guards the REST API: unauthenticated requests get 403.
func AuthRequired(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := sessions.GetSession(c)
		if err != nil {
			slog.Debug("Auth required: no valid session", slog.String("error", err.Error()))
			return utils.SendForbidden(c, "Authentication required")
		}

		c.Locals("user", session)
		return c.Next()
	}
}

// LegacyAuthRequired guards the legacy API, which answers 401 instead
// of 403 for unauthenticated requests.
func LegacyAuthRequired(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := sessions.GetSession(c)
		if err != nil {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		c.Locals("user", session)
		return c.Next()
	}
}

// OptionalAuth attaches the session to the context when present but
// never rejects the request. Used for the HTML pages.
func OptionalAuth(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if session, err := sessions.GetSession(c); err == nil {
			c.Locals("user", session)
		}
		return c.Next()
	}
}

// AdminRequired ensures the authenticated user has admin privileges.
// Must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("user")
		if user == nil {
			slog.Warn("Admin required: no user in context")
			return utils.SendForbidden(c, "Access denied")
		}

		session, ok := user.(*models.UserSession)
		if !ok {
			slog.Warn("Admin required: invalid user session type")
			return utils.SendForbidden(c, "Access denied")
		}

		if !session.IsAdmin {
			slog.Warn("Admin required: user lacks admin privileges",
				slog.Int64("user_id", session.UserID),
				slog.String("username", session.Username))
			return utils.SendForbidden(c, "Admin access required")
		}

		return c.Next()
	}
}
