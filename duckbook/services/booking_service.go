package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/duckbook/duckbook/duckbook/database/models"
	"github.com/duckbook/duckbook/duckbook/database/repositories"
	"github.com/duckbook/duckbook/duckbook/ducklevel"
)

const dpxCacheSize = 1024

// BookingStatus is the business outcome of a booking attempt. These
// are expected results, not errors, and travel in 200 responses.
type BookingStatus string

const (
	StatusOK            BookingStatus = "ok"
	StatusAlreadyBooked BookingStatus = "already-booked"
	StatusBadComp       BookingStatus = "bad-comp"
)

// ErrNotBookingOwner is returned when a user tries to release a duck
// someone else has booked.
var ErrNotBookingOwner = errors.New("active booking belongs to another user")

// BookingService decides booking attempts and derives booking
// statistics. All state lives behind the repositories; the decision
// itself runs under a duck row lock.
type BookingService struct {
	ducks    repositories.DuckRepository
	comps    repositories.CompetenceRepository
	bookings repositories.BookingRepository
	calc     *ducklevel.Calculator
	dpxCache *lru.Cache
}

func NewBookingService(
	ducks repositories.DuckRepository,
	comps repositories.CompetenceRepository,
	bookings repositories.BookingRepository,
	calc *ducklevel.Calculator,
) *BookingService {
	cache, _ := lru.New(dpxCacheSize)
	return &BookingService{
		ducks:    ducks,
		comps:    comps,
		bookings: bookings,
		calc:     calc,
		dpxCache: cache,
	}
}

// Book attempts to book a duck for a competence. An active booking
// wins over everything else; a competence level at or below the warn
// level blocks the booking unless forced.
func (s *BookingService) Book(ctx context.Context, duckID, compID, userID int64, force bool) (BookingStatus, error) {
	if _, err := s.ducks.GetByID(ctx, duckID); err != nil {
		return "", err
	}
	if _, err := s.comps.GetByID(ctx, compID); err != nil {
		return "", err
	}

	var status BookingStatus
	err := s.bookings.WithDuckLock(ctx, duckID, func(ctx context.Context, store repositories.BookingStore) error {
		active, err := store.ActiveBooking(ctx, duckID)
		if err != nil {
			if errors.Is(err, repositories.ErrDuplicateActiveBooking) {
				slog.Error("Booking invariant violated",
					slog.String("type", "booking"),
					slog.Int64("duck_id", duckID),
					slog.String("error", err.Error()))
			}
			return err
		}
		if active != nil {
			status = StatusAlreadyBooked
			return nil
		}

		level := 0
		dc, err := store.DuckCompetence(ctx, duckID, compID)
		if err != nil {
			return err
		}
		if dc != nil {
			level = s.calc.MinutesToLevel(dc.UpMinutes, dc.DownMinutes)
		}

		if level <= s.calc.WarnLevel() && !force {
			status = StatusBadComp
			return nil
		}

		booking := &models.Booking{
			DuckID:     duckID,
			UserID:     userID,
			CompReqID:  compID,
			StartTS:    time.Now(),
			Successful: true,
		}
		if err := store.CreateBooking(ctx, booking); err != nil {
			return err
		}
		status = StatusOK
		return nil
	})
	if err != nil {
		return "", err
	}

	if status == StatusOK {
		slog.Info("Duck booked",
			slog.String("type", "booking"),
			slog.Int64("duck_id", duckID),
			slog.Int64("comp_id", compID),
			slog.Int64("user_id", userID),
			slog.Bool("force", force))
	}
	return status, nil
}

// Release closes the requesting user's active booking and credits the
// booked minutes to the duck's competence record.
func (s *BookingService) Release(ctx context.Context, duckID, userID int64) (*models.Booking, error) {
	var closed *models.Booking
	err := s.bookings.WithDuckLock(ctx, duckID, func(ctx context.Context, store repositories.BookingStore) error {
		active, err := store.ActiveBooking(ctx, duckID)
		if err != nil {
			return err
		}
		if active == nil {
			return &repositories.NotFoundError{Entity: "active booking", ID: duckID}
		}
		if active.UserID != userID {
			return ErrNotBookingOwner
		}

		now := time.Now()
		active.EndTS = &now
		if err := store.CloseBooking(ctx, active); err != nil {
			return err
		}

		minutes := int64(now.Sub(active.StartTS).Minutes())
		if minutes > 0 {
			if active.Successful {
				err = store.AddUpMinutes(ctx, duckID, active.CompReqID, minutes)
			} else {
				err = store.AddDownMinutes(ctx, duckID, active.CompReqID, minutes)
			}
			if err != nil {
				return err
			}
		}

		closed = active
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Terminated bookings shift every duck's share of total time.
	s.dpxCache.Purge()

	slog.Info("Duck released",
		slog.String("type", "booking"),
		slog.Int64("duck_id", duckID),
		slog.Int64("user_id", userID))
	return closed, nil
}

// BookedBy returns the user ID currently holding the duck, or nil.
func (s *BookingService) BookedBy(ctx context.Context, duckID int64) (*int64, error) {
	active, err := s.bookings.ActiveBooking(ctx, duckID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, nil
	}
	return &active.UserID, nil
}

// DPX computes the Duck Popularity indeX: the duck's share of the
// total terminated booking time across all ducks. Zero when either
// sum is empty.
func (s *BookingService) DPX(ctx context.Context, duckID int64) (float64, error) {
	if cached, ok := s.dpxCache.Get(duckID); ok {
		return cached.(float64), nil
	}

	total, err := s.bookings.TotalBookedSeconds(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to sum booking time: %w", err)
	}
	if total <= 0 {
		return 0, nil
	}

	duckTime, err := s.bookings.DuckBookedSeconds(ctx, duckID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum duck booking time: %w", err)
	}
	if duckTime <= 0 {
		return 0, nil
	}

	dpx := duckTime / total
	s.dpxCache.Add(duckID, dpx)
	return dpx, nil
}
