package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/duckbook/duckbook/backend/models"
	"github.com/duckbook/duckbook/backend/utils"
	"github.com/duckbook/duckbook/duckbook/database/repositories"
)

// CompetencesList returns every registered competence.
func CompetencesList(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		comps, err := app.Competences.List(c.Context())
		if err != nil {
			return sendRepositoryError(c, err)
		}

		type compResponse struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}
		responses := make([]compResponse, 0, len(comps))
		for _, comp := range comps {
			responses = append(responses, compResponse{ID: comp.ID, Name: comp.Name})
		}
		return c.JSON(responses)
	}
}

// CompetenceDetail returns one competence.
func CompetenceDetail(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid competence ID", nil)
		}

		comp, err := app.Competences.Get(c.Context(), int64(id))
		if err != nil {
			return sendRepositoryError(c, err)
		}

		return c.JSON(fiber.Map{
			"id":       comp.ID,
			"name":     comp.Name,
			"added_by": comp.AddedBy,
			"added_at": comp.AddedAt,
		})
	}
}

// CompetenceCreate registers a competence. Near-duplicate names are
// advisory: the response carries the similar names but creation still
// happens unless the name collides exactly.
func CompetenceCreate(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.CompetenceRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			return utils.SendBadRequest(c, "Missing competence name", nil)
		}

		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendForbidden(c, "Authentication required")
		}

		similar, err := app.Competences.SimilarNames(c.Context(), name)
		if err != nil {
			return sendRepositoryError(c, err)
		}

		comp, err := app.Competences.Create(c.Context(), name, session.UserID)
		if err != nil {
			if repositories.IsConflict(err) {
				return utils.SendConflict(c, "Competence already exists", nil)
			}
			return sendRepositoryError(c, err)
		}

		return c.JSON(fiber.Map{
			"id":      comp.ID,
			"name":    comp.Name,
			"similar": similar,
		})
	}
}

// CompetenceSimilar previews likely-duplicate names for a candidate,
// so the form can warn before submission.
func CompetenceSimilar(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := strings.TrimSpace(c.Query("name"))
		if name == "" {
			return utils.SendBadRequest(c, "Missing name parameter", nil)
		}

		similar, err := app.Competences.SimilarNames(c.Context(), name)
		if err != nil {
			return sendRepositoryError(c, err)
		}
		if similar == nil {
			similar = []string{}
		}
		return c.JSON(fiber.Map{"similar": similar})
	}
}
