package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/duckbook/duckbook/duckbook/database/models"
	"github.com/duckbook/duckbook/duckbook/database/repositories"
	"github.com/duckbook/duckbook/duckbook/utils"
)

// Donation rejection reasons, surfaced verbatim in API responses.
const (
	DonationIncomplete  = "incomplete-request"
	DonationBadSpecies  = "bad-species"
	DonationBadLocation = "bad-location"
	DonationBadColor    = "bad-color"
)

// DonationError rejects a duck donation with a named reason.
type DonationError struct {
	Status string
}

func (de *DonationError) Error() string {
	return "donation rejected: " + de.Status
}

// DonateDuckInput carries the raw donation fields before validation.
// Zero IDs mean the field was absent from the request.
type DonateDuckInput struct {
	SpeciesID  int64
	LocationID int64
	Color      string
	Name       string
	DonatedBy  int64
}

// DuckService manages the duck pool itself; bookings are
// BookingService territory.
type DuckService struct {
	ducks     repositories.DuckRepository
	species   repositories.SpeciesRepository
	locations repositories.LocationRepository
}

func NewDuckService(
	ducks repositories.DuckRepository,
	species repositories.SpeciesRepository,
	locations repositories.LocationRepository,
) *DuckService {
	return &DuckService{ducks: ducks, species: species, locations: locations}
}

// Donate validates and registers a donated duck. Validation order is
// fixed: missing fields first, then species, location and color.
func (s *DuckService) Donate(ctx context.Context, input DonateDuckInput) (*models.Duck, error) {
	if input.SpeciesID == 0 || input.LocationID == 0 || input.Color == "" {
		return nil, &DonationError{Status: DonationIncomplete}
	}

	if _, err := s.species.GetByID(ctx, input.SpeciesID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, &DonationError{Status: DonationBadSpecies}
		}
		return nil, err
	}
	if _, err := s.locations.GetByID(ctx, input.LocationID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, &DonationError{Status: DonationBadLocation}
		}
		return nil, err
	}
	if !utils.ValidHexColor(input.Color) {
		return nil, &DonationError{Status: DonationBadColor}
	}

	duck := &models.Duck{
		Name:       input.Name,
		Color:      input.Color,
		SpeciesID:  input.SpeciesID,
		LocationID: input.LocationID,
		DonatedBy:  input.DonatedBy,
		DonatedAt:  time.Now(),
	}
	if err := s.ducks.Create(ctx, duck); err != nil {
		return nil, err
	}

	slog.Info("Duck donated",
		slog.String("type", "sys"),
		slog.Int64("duck_id", duck.ID),
		slog.Int64("donated_by", input.DonatedBy))
	return duck, nil
}

func (s *DuckService) Get(ctx context.Context, id int64) (*models.Duck, error) {
	return s.ducks.GetByID(ctx, id)
}

// GetDetailed loads a duck with its species, location and competence
// relations for the detail pages.
func (s *DuckService) GetDetailed(ctx context.Context, id int64) (*models.Duck, error) {
	return s.ducks.GetDetailed(ctx, id)
}

func (s *DuckService) List(ctx context.Context) ([]*models.Duck, error) {
	return s.ducks.GetAll(ctx)
}

func (s *DuckService) Count(ctx context.Context) (int, error) {
	return s.ducks.Count(ctx)
}
