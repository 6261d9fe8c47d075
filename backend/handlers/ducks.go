package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/duckbook/duckbook/backend/models"
	"github.com/duckbook/duckbook/backend/utils"
	"github.com/duckbook/duckbook/duckbook/services"
)

// DucksList returns every duck in the pool.
func DucksList(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ducks, err := app.Ducks.List(c.Context())
		if err != nil {
			return sendRepositoryError(c, err)
		}

		responses := make([]*webmodels.DuckResponse, 0, len(ducks))
		for _, duck := range ducks {
			resp, err := app.duckResponse(c, duck, false)
			if err != nil {
				return sendRepositoryError(c, err)
			}
			responses = append(responses, resp)
		}
		return c.JSON(responses)
	}
}

// DuckDetail returns one duck with its competences and booking state.
func DuckDetail(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid duck ID", nil)
		}

		duck, err := app.Ducks.GetDetailed(c.Context(), int64(id))
		if err != nil {
			return sendRepositoryError(c, err)
		}

		resp, err := app.duckResponse(c, duck, true)
		if err != nil {
			return sendRepositoryError(c, err)
		}
		return c.JSON(resp)
	}
}

// DuckDonate registers a donated duck. Validation failures answer 400
// with a named status so the donor form can point at the bad field.
func DuckDonate(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.DonateRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status": services.DonationIncomplete,
			})
		}

		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendForbidden(c, "Authentication required")
		}

		duck, err := app.Ducks.Donate(c.Context(), services.DonateDuckInput{
			SpeciesID:  req.Species,
			LocationID: req.Location,
			Color:      req.Color,
			Name:       req.Name,
			DonatedBy:  session.UserID,
		})
		if err != nil {
			var de *services.DonationError
			if errors.As(err, &de) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"status": de.Status,
				})
			}
			return sendRepositoryError(c, err)
		}

		return c.JSON(fiber.Map{"id": duck.ID})
	}
}

// DuckSearch finds ducks by approximate name.
func DuckSearch(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")

		ducks, err := app.Search.SearchDucks(c.Context(), query)
		if err != nil {
			return sendRepositoryError(c, err)
		}

		responses := make([]*webmodels.DuckResponse, 0, len(ducks))
		for _, duck := range ducks {
			resp, err := app.duckResponse(c, duck, false)
			if err != nil {
				return sendRepositoryError(c, err)
			}
			responses = append(responses, resp)
		}
		return c.JSON(responses)
	}
}

// DuckPhotoUpload stores a photo for a duck.
func DuckPhotoUpload(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if app.Photos == nil {
			return utils.SendError(c, fiber.StatusServiceUnavailable,
				"PHOTOS_DISABLED", "Photo storage is not configured", nil)
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid duck ID", nil)
		}

		contentType := c.Get("Content-Type")
		if contentType != "image/jpeg" && contentType != "image/png" {
			return utils.SendBadRequest(c, "Unsupported photo content type", nil)
		}

		body := c.Body()
		if len(body) == 0 {
			return utils.SendBadRequest(c, "Empty photo body", nil)
		}

		key, err := app.Photos.Upload(c.Context(), int64(id), body, contentType)
		if err != nil {
			slog.Error("Photo upload failed",
				slog.String("type", "error"),
				slog.Int("duck_id", id),
				slog.String("error", err.Error()))
			return sendRepositoryError(c, err)
		}

		return c.JSON(fiber.Map{"photo_url": app.Photos.URL(key)})
	}
}

// DuckPhotoDelete removes a duck's photo.
func DuckPhotoDelete(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if app.Photos == nil {
			return utils.SendError(c, fiber.StatusServiceUnavailable,
				"PHOTOS_DISABLED", "Photo storage is not configured", nil)
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid duck ID", nil)
		}

		if err := app.Photos.Delete(c.Context(), int64(id)); err != nil {
			slog.Error("Photo delete failed",
				slog.String("type", "error"),
				slog.Int("duck_id", id),
				slog.String("error", err.Error()))
			return sendRepositoryError(c, err)
		}

		return c.JSON(fiber.Map{"status": "ok"})
	}
}
