package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/duckbook/duckbook/duckbook/database/models"
	"github.com/duckbook/duckbook/duckbook/database/repositories"
)

var ErrVotingClosed = errors.New("voting on this name suggestion has closed")

// NameTally is a suggestion with its current vote counts.
type NameTally struct {
	Suggestion *models.DuckName
	Upvotes    int
	Downvotes  int
}

// NamingService runs the name-a-duck workflow: suggestions, votes and
// promoting the winning name onto the duck.
type NamingService struct {
	ducks repositories.DuckRepository
	names repositories.DuckNameRepository
}

func NewNamingService(ducks repositories.DuckRepository, names repositories.DuckNameRepository) *NamingService {
	return &NamingService{ducks: ducks, names: names}
}

// Suggest records a name suggestion for a duck.
func (s *NamingService) Suggest(ctx context.Context, duckID int64, name string, suggestedBy int64) (*models.DuckName, error) {
	if _, err := s.ducks.GetByID(ctx, duckID); err != nil {
		return nil, err
	}

	suggestion := &models.DuckName{
		DuckID:      duckID,
		Name:        name,
		SuggestedBy: suggestedBy,
		SuggestedAt: time.Now(),
	}
	if err := s.names.Create(ctx, suggestion); err != nil {
		return nil, err
	}
	return suggestion, nil
}

// Vote casts an up or down vote on an open suggestion.
func (s *NamingService) Vote(ctx context.Context, nameID, voterID int64, upvote bool) error {
	suggestion, err := s.names.GetByID(ctx, nameID)
	if err != nil {
		return err
	}
	if suggestion.Closed() {
		return ErrVotingClosed
	}

	return s.names.Vote(ctx, &models.DuckNameVote{
		DuckNameID: nameID,
		VoterID:    voterID,
		VoteTS:     time.Now(),
		Upvote:     upvote,
	})
}

// Tally lists a duck's suggestions with their vote counts.
func (s *NamingService) Tally(ctx context.Context, duckID int64) ([]*NameTally, error) {
	suggestions, err := s.names.GetForDuck(ctx, duckID)
	if err != nil {
		return nil, err
	}

	tallies := make([]*NameTally, 0, len(suggestions))
	for _, suggestion := range suggestions {
		up, down, err := s.names.VoteCounts(ctx, suggestion.ID)
		if err != nil {
			return nil, err
		}
		tallies = append(tallies, &NameTally{Suggestion: suggestion, Upvotes: up, Downvotes: down})
	}
	return tallies, nil
}

// Settle closes a suggestion and writes its name onto the duck.
func (s *NamingService) Settle(ctx context.Context, nameID, closedBy int64) error {
	suggestion, err := s.names.GetByID(ctx, nameID)
	if err != nil {
		return err
	}
	if suggestion.Closed() {
		return ErrVotingClosed
	}

	if err := s.names.Close(ctx, nameID, closedBy); err != nil {
		return err
	}
	if err := s.ducks.SetName(ctx, suggestion.DuckID, suggestion.Name); err != nil {
		return err
	}

	slog.Info("Duck named",
		slog.String("type", "sys"),
		slog.Int64("duck_id", suggestion.DuckID),
		slog.String("name", suggestion.Name),
		slog.Int64("closed_by", closedBy))
	return nil
}
