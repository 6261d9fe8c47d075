package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/duckbook/duckbook/backend/models"
	"github.com/duckbook/duckbook/backend/utils"
	"github.com/duckbook/duckbook/duckbook/services"
)

// Legacy numeric booking outcomes: 0 already booked, 1 competence too
// low, 2 booked.
var legacySuccessCodes = map[services.BookingStatus]int{
	services.StatusAlreadyBooked: 0,
	services.StatusBadComp:       1,
	services.StatusOK:            2,
}

// BookDuck handles the REST booking endpoint. Business outcomes are
// 200 responses with a status string; only missing entities and
// storage faults are errors.
func BookDuck(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid duck ID", nil)
		}

		var req webmodels.BookRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if req.Competence == 0 {
			return utils.SendBadRequest(c, "Missing competence", nil)
		}

		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendForbidden(c, "Authentication required")
		}

		status, err := app.Bookings.Book(c.Context(), int64(id), req.Competence, session.UserID, req.Force)
		if err != nil {
			return sendRepositoryError(c, err)
		}

		return c.JSON(fiber.Map{"status": status})
	}
}

// ReleaseDuck closes the caller's active booking on a duck.
func ReleaseDuck(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid duck ID", nil)
		}

		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendForbidden(c, "Authentication required")
		}

		booking, err := app.Bookings.Release(c.Context(), int64(id), session.UserID)
		if err != nil {
			if errors.Is(err, services.ErrNotBookingOwner) {
				return utils.SendForbidden(c, "Booking belongs to another user")
			}
			return sendRepositoryError(c, err)
		}

		return c.JSON(fiber.Map{
			"status":           "ok",
			"booked_seconds":   booking.Duration().Seconds(),
			"booking_complete": booking.Successful,
		})
	}
}

// LegacyBookDuck handles the legacy booking endpoint, which takes the
// duck ID in the body and answers with a numeric success code.
func LegacyBookDuck(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.LegacyBookRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if req.DuckID == 0 || req.CompID == 0 {
			return utils.SendBadRequest(c, "Missing duck_id or comp_id", nil)
		}

		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		status, err := app.Bookings.Book(c.Context(), req.DuckID, req.CompID, session.UserID, req.Force)
		if err != nil {
			return sendRepositoryError(c, err)
		}

		return c.JSON(fiber.Map{"success": legacySuccessCodes[status]})
	}
}

// BookingHistory lists a duck's bookings, newest first.
func BookingHistory(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid duck ID", nil)
		}

		if _, err := app.Ducks.Get(c.Context(), int64(id)); err != nil {
			return sendRepositoryError(c, err)
		}

		bookings, err := app.Repos.Booking.GetForDuck(c.Context(), int64(id))
		if err != nil {
			return sendRepositoryError(c, err)
		}

		type bookingResponse struct {
			ID      int64    `json:"id"`
			UserID  int64    `json:"user_id"`
			CompID  int64    `json:"comp_id"`
			StartTS string   `json:"start_ts"`
			EndTS   *string  `json:"end_ts"`
			Seconds *float64 `json:"seconds"`
		}

		responses := make([]bookingResponse, 0, len(bookings))
		for _, b := range bookings {
			resp := bookingResponse{
				ID:      b.ID,
				UserID:  b.UserID,
				CompID:  b.CompReqID,
				StartTS: b.StartTS.UTC().Format("2006-01-02T15:04:05Z"),
			}
			if b.EndTS != nil {
				end := b.EndTS.UTC().Format("2006-01-02T15:04:05Z")
				seconds := b.Duration().Seconds()
				resp.EndTS = &end
				resp.Seconds = &seconds
			}
			responses = append(responses, resp)
		}
		return c.JSON(responses)
	}
}
