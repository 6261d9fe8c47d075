package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/duckbook/duckbook/backend/models"
	websvc "github.com/duckbook/duckbook/backend/services"
	"github.com/duckbook/duckbook/backend/utils"
	"github.com/duckbook/duckbook/duckbook/database/repositories"
)

// Register creates a local account and signs the user in.
func Register(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		user, err := app.Auth.Register(c.Context(), req.Username, req.Password)
		if err != nil {
			if repositories.IsConflict(err) {
				return utils.SendConflict(c, "Username already taken", nil)
			}
			return utils.SendBadRequest(c, err.Error(), nil)
		}

		session := &webmodels.UserSession{
			UserID:   user.ID,
			Username: user.Username,
			IsAdmin:  user.IsAdmin,
		}
		if err := app.Sessions.CreateSession(c, session); err != nil {
			return utils.SendInternalServerError(c, "Failed to create session")
		}

		return utils.SendCreated(c, fiber.Map{"id": user.ID, "username": user.Username}, "Account created")
	}
}

// Login authenticates a local account and sets the session cookie.
func Login(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		user, err := app.Auth.Authenticate(c.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, websvc.ErrInvalidCredentials) {
				return utils.SendUnauthorized(c, "Invalid username or password")
			}
			return utils.SendInternalServerError(c, "Authentication failed")
		}

		session := &webmodels.UserSession{
			UserID:   user.ID,
			Username: user.Username,
			IsAdmin:  user.IsAdmin,
		}
		if err := app.Sessions.CreateSession(c, session); err != nil {
			return utils.SendInternalServerError(c, "Failed to create session")
		}

		return utils.SendSuccess(c, fiber.Map{"id": user.ID, "username": user.Username}, "Logged in")
	}
}

// Logout destroys the session cookie.
func Logout(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		app.Sessions.DestroySession(c)
		return utils.SendSuccess(c, nil, "Logged out")
	}
}

// ValidateSession reports whether the request carries a valid session.
func ValidateSession(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := app.Sessions.GetSession(c)
		if err != nil {
			return utils.SendUnauthorized(c, "No valid session")
		}
		return utils.SendSuccess(c, session, "Session valid")
	}
}
