package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/duckbook/duckbook/backend/models"
	"github.com/duckbook/duckbook/backend/utils"
	"github.com/duckbook/duckbook/duckbook/services"
)

// NameSuggest records a name suggestion for a duck.
func NameSuggest(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid duck ID", nil)
		}

		var req webmodels.NameSuggestRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return utils.SendBadRequest(c, "Missing name", nil)
		}

		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendForbidden(c, "Authentication required")
		}

		suggestion, err := app.Naming.Suggest(c.Context(), int64(id), name, session.UserID)
		if err != nil {
			return sendRepositoryError(c, err)
		}

		return c.JSON(fiber.Map{"id": suggestion.ID, "name": suggestion.Name})
	}
}

// NameVote casts a vote on a name suggestion.
func NameVote(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		nameID, err := c.ParamsInt("nameID")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid name ID", nil)
		}

		var req webmodels.NameVoteRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendForbidden(c, "Authentication required")
		}

		err = app.Naming.Vote(c.Context(), int64(nameID), session.UserID, req.Upvote)
		if err != nil {
			if errors.Is(err, services.ErrVotingClosed) {
				return utils.SendConflict(c, "Voting on this suggestion has closed", nil)
			}
			return sendRepositoryError(c, err)
		}

		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// NameTally lists a duck's name suggestions with vote counts.
func NameTally(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid duck ID", nil)
		}

		if _, err := app.Ducks.Get(c.Context(), int64(id)); err != nil {
			return sendRepositoryError(c, err)
		}

		tallies, err := app.Naming.Tally(c.Context(), int64(id))
		if err != nil {
			return sendRepositoryError(c, err)
		}

		responses := make([]*webmodels.NameTallyResponse, 0, len(tallies))
		for _, tally := range tallies {
			responses = append(responses, &webmodels.NameTallyResponse{
				ID:        tally.Suggestion.ID,
				Name:      tally.Suggestion.Name,
				Upvotes:   tally.Upvotes,
				Downvotes: tally.Downvotes,
				Closed:    tally.Suggestion.Closed(),
			})
		}
		return c.JSON(responses)
	}
}

// NameSettle closes a suggestion and names the duck after it. Admins
// only.
func NameSettle(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		nameID, err := c.ParamsInt("nameID")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid name ID", nil)
		}

		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendForbidden(c, "Authentication required")
		}

		err = app.Naming.Settle(c.Context(), int64(nameID), session.UserID)
		if err != nil {
			if errors.Is(err, services.ErrVotingClosed) {
				return utils.SendConflict(c, "Voting on this suggestion has closed", nil)
			}
			return sendRepositoryError(c, err)
		}

		return c.JSON(fiber.Map{"status": "ok"})
	}
}
