package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/duckbook/duckbook/backend/models"
	websvc "github.com/duckbook/duckbook/backend/services"
	"github.com/duckbook/duckbook/backend/utils"
	"github.com/duckbook/duckbook/duckbook/database/repositories"
)

// renderPage renders an HTML page with the session attached for the
// navigation bar.
func (app *WebApp) renderPage(c *fiber.Ctx, page string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if session, ok := utils.ExtractUserSession(c); ok {
		data["User"] = session
	}

	body, err := app.Templates.Render(page, data)
	if err != nil {
		slog.Error("Template rendering failed",
			slog.String("type", "error"),
			slog.String("page", page),
			slog.String("error", err.Error()))
		return fiber.ErrInternalServerError
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(body)
}

// DucksPage renders the duck listing page.
func DucksPage(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ducks, err := app.Ducks.List(c.Context())
		if err != nil {
			return fiber.ErrInternalServerError
		}

		responses := make([]*webmodels.DuckResponse, 0, len(ducks))
		for _, duck := range ducks {
			resp, err := app.duckResponse(c, duck, false)
			if err != nil {
				return fiber.ErrInternalServerError
			}

			bookedBy, err := app.Bookings.BookedBy(c.Context(), duck.ID)
			if err != nil {
				return fiber.ErrInternalServerError
			}
			resp.BookedBy = bookedBy
			responses = append(responses, resp)
		}

		return app.renderPage(c, "ducks.html", fiber.Map{
			"Ducks": responses,
			"Count": len(responses),
		})
	}
}

// DuckDetailPage renders one duck with its competences.
func DuckDetailPage(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.ErrNotFound
		}

		duck, err := app.Ducks.GetDetailed(c.Context(), int64(id))
		if err != nil {
			if repositories.IsNotFound(err) {
				return fiber.ErrNotFound
			}
			return fiber.ErrInternalServerError
		}

		resp, err := app.duckResponse(c, duck, true)
		if err != nil {
			return fiber.ErrInternalServerError
		}

		return app.renderPage(c, "duck_detail.html", fiber.Map{"Duck": resp})
	}
}

// StaticPage renders one of the fixed content pages.
func StaticPage(app *WebApp, page string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return app.renderPage(c, page, nil)
	}
}

// LoginPage renders the login form.
func LoginPage(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return app.renderPage(c, "login.html", nil)
	}
}

// LoginSubmit handles the login form post.
func LoginSubmit(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.FormValue("username")
		password := c.FormValue("password")

		user, err := app.Auth.Authenticate(c.Context(), username, password)
		if err != nil {
			if errors.Is(err, websvc.ErrInvalidCredentials) {
				return app.renderPage(c, "login.html", fiber.Map{
					"Error": "Invalid username or password.",
				})
			}
			return fiber.ErrInternalServerError
		}

		session := &webmodels.UserSession{
			UserID:   user.ID,
			Username: user.Username,
			IsAdmin:  user.IsAdmin,
		}
		if err := app.Sessions.CreateSession(c, session); err != nil {
			return fiber.ErrInternalServerError
		}

		return c.Redirect("/")
	}
}

// RegisterPage renders the registration form.
func RegisterPage(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return app.renderPage(c, "register.html", nil)
	}
}

// RegisterSubmit handles the registration form post.
func RegisterSubmit(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.FormValue("username")
		password := c.FormValue("password")

		user, err := app.Auth.Register(c.Context(), username, password)
		if err != nil {
			message := "Registration failed."
			if repositories.IsConflict(err) {
				message = "That username is already taken."
			} else if err.Error() != "" {
				message = err.Error()
			}
			return app.renderPage(c, "register.html", fiber.Map{"Error": message})
		}

		session := &webmodels.UserSession{
			UserID:   user.ID,
			Username: user.Username,
			IsAdmin:  user.IsAdmin,
		}
		if err := app.Sessions.CreateSession(c, session); err != nil {
			return fiber.ErrInternalServerError
		}

		return c.Redirect("/")
	}
}

// LogoutSubmit handles the logout form post.
func LogoutSubmit(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		app.Sessions.DestroySession(c)
		return c.Redirect("/")
	}
}
