package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/duckbook/duckbook/backend/config"
	webmodels "github.com/duckbook/duckbook/backend/models"
	websvc "github.com/duckbook/duckbook/backend/services"
	"github.com/duckbook/duckbook/backend/templates"
	"github.com/duckbook/duckbook/backend/utils"
	"github.com/duckbook/duckbook/duckbook/database/models"
	"github.com/duckbook/duckbook/duckbook/database/repositories"
	"github.com/duckbook/duckbook/duckbook/ducklevel"
	"github.com/duckbook/duckbook/duckbook/services"
	duckutils "github.com/duckbook/duckbook/duckbook/utils"
)

// WebApp bundles everything the handlers need.
type WebApp struct {
	Config      *config.WebAppConfig
	Repos       *repositories.Repositories
	Ducks       *services.DuckService
	Bookings    *services.BookingService
	Competences *services.CompetenceService
	Naming      *services.NamingService
	Search      *services.SearchService
	Photos      *services.PhotoService
	Sessions    *websvc.SessionService
	Auth        *websvc.AuthService
	Calc        *ducklevel.Calculator
	Templates   *templates.Renderer
	Version     string
}

// duckResponse assembles the API representation of a duck. The
// detailed flag controls whether relations and derived stats are
// included.
func (app *WebApp) duckResponse(c *fiber.Ctx, duck *models.Duck, detailed bool) (*webmodels.DuckResponse, error) {
	now := time.Now()
	age := duck.Age(now)

	resp := &webmodels.DuckResponse{
		ID:         duck.ID,
		Name:       duck.DisplayName(),
		Color:      duck.Color,
		AgeSeconds: age,
		Age:        duckutils.FormatAge(age, !detailed),
		OnHoliday:  duck.OnHoliday(now),
	}
	if age < 0 {
		resp.Age = ""
	}
	if duck.Species != nil {
		resp.Species = duck.Species.Name
	}
	if duck.Location != nil {
		resp.Location = duck.Location.Name
	}
	if app.Photos != nil {
		resp.PhotoURL = app.Photos.URL(duck.PhotoKey)
	}

	if !detailed {
		return resp, nil
	}

	dpx, err := app.Bookings.DPX(c.Context(), duck.ID)
	if err != nil {
		return nil, err
	}
	resp.DPX = dpx

	bookedBy, err := app.Bookings.BookedBy(c.Context(), duck.ID)
	if err != nil {
		return nil, err
	}
	resp.BookedBy = bookedBy

	for _, dc := range duck.Competences {
		compResp := &webmodels.CompetenceResponse{
			ID:          dc.CompID,
			Level:       app.Calc.MinutesToLevel(dc.UpMinutes, dc.DownMinutes),
			UpMinutes:   dc.UpMinutes,
			DownMinutes: dc.DownMinutes,
		}
		if dc.Comp != nil {
			compResp.Name = dc.Comp.Name
		}
		resp.Competences = append(resp.Competences, compResp)
	}
	return resp, nil
}

// sendRepositoryError maps repository errors onto API status codes.
func sendRepositoryError(c *fiber.Ctx, err error) error {
	switch {
	case repositories.IsNotFound(err):
		return utils.SendNotFound(c, err.Error())
	case repositories.IsConflict(err):
		return utils.SendConflict(c, err.Error(), nil)
	default:
		return utils.SendInternalServerError(c, "Unexpected error")
	}
}
