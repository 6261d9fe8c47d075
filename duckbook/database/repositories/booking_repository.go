package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/duckbook/duckbook/duckbook/database/models"
)

// BookingStore is the storage view the booking rule engine works
// against. Its bun implementation runs inside a transaction holding a
// row lock on the duck, so the check-and-create sequence cannot race
// with a concurrent booking attempt for the same duck.
type BookingStore interface {
	// ActiveBooking returns the unterminated booking for a duck, nil
	// when there is none, and ErrDuplicateActiveBooking when storage
	// holds more than one.
	ActiveBooking(ctx context.Context, duckID int64) (*models.Booking, error)
	// DuckCompetence returns the usage record for a (duck, comp) pair,
	// or nil when the duck has never been booked for that competence.
	DuckCompetence(ctx context.Context, duckID, compID int64) (*models.DuckCompetence, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	CloseBooking(ctx context.Context, booking *models.Booking) error
	// AddUpMinutes credits successful booking minutes, creating the
	// usage record on first use.
	AddUpMinutes(ctx context.Context, duckID, compID, minutes int64) error
	// AddDownMinutes credits unsuccessful booking minutes.
	AddDownMinutes(ctx context.Context, duckID, compID, minutes int64) error
}

type BookingRepository interface {
	// WithDuckLock runs fn inside a transaction that holds a FOR
	// UPDATE lock on the duck row for the whole decision.
	WithDuckLock(ctx context.Context, duckID int64, fn func(ctx context.Context, store BookingStore) error) error
	ActiveBooking(ctx context.Context, duckID int64) (*models.Booking, error)
	GetForDuck(ctx context.Context, duckID int64) ([]*models.Booking, error)
	// TotalBookedSeconds sums the duration of all terminated bookings.
	TotalBookedSeconds(ctx context.Context) (float64, error)
	// DuckBookedSeconds sums the duration of a duck's terminated bookings.
	DuckBookedSeconds(ctx context.Context, duckID int64) (float64, error)
}

type bookingRepository struct {
	db *bun.DB
}

func NewBookingRepository(db *bun.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) WithDuckLock(ctx context.Context, duckID int64, fn func(ctx context.Context, store BookingStore) error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		duck := new(models.Duck)
		err := tx.NewSelect().
			Model(duck).
			Where("d.id = ?", duckID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			return wrapError("lock", "duck", duckID, err)
		}
		return fn(ctx, &txBookingStore{tx: tx})
	})
}

func (r *bookingRepository) ActiveBooking(ctx context.Context, duckID int64) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	return activeBooking(ctx, r.db, duckID)
}

func (r *bookingRepository) GetForDuck(ctx context.Context, duckID int64) ([]*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var bookings []*models.Booking
	err := r.db.NewSelect().
		Model(&bookings).
		Where("duck_id = ?", duckID).
		Order("start_ts DESC").
		Scan(ctx)
	if err != nil {
		return nil, wrapError("list", "booking", duckID, err)
	}
	return bookings, nil
}

func (r *bookingRepository) TotalBookedSeconds(ctx context.Context) (float64, error) {
	return r.bookedSeconds(ctx, nil)
}

func (r *bookingRepository) DuckBookedSeconds(ctx context.Context, duckID int64) (float64, error) {
	return r.bookedSeconds(ctx, &duckID)
}

func (r *bookingRepository) bookedSeconds(ctx context.Context, duckID *int64) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := r.db.NewSelect().
		Model((*models.Booking)(nil)).
		ColumnExpr("COALESCE(SUM(EXTRACT(EPOCH FROM (end_ts - start_ts))), 0)").
		Where("end_ts IS NOT NULL")
	if duckID != nil {
		query = query.Where("duck_id = ?", *duckID)
	}

	var seconds float64
	if err := query.Scan(ctx, &seconds); err != nil {
		return 0, wrapError("booked_seconds", "booking", duckID, err)
	}
	return seconds, nil
}

// txBookingStore is the transaction-bound BookingStore.
type txBookingStore struct {
	tx bun.Tx
}

func (s *txBookingStore) ActiveBooking(ctx context.Context, duckID int64) (*models.Booking, error) {
	return activeBooking(ctx, s.tx, duckID)
}

func (s *txBookingStore) DuckCompetence(ctx context.Context, duckID, compID int64) (*models.DuckCompetence, error) {
	dc := new(models.DuckCompetence)
	err := s.tx.NewSelect().
		Model(dc).
		Where("dc.duck_id = ? AND dc.comp_id = ?", duckID, compID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError("get", "duck_competence", duckID, err)
	}
	return dc, nil
}

func (s *txBookingStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	_, err := s.tx.NewInsert().Model(booking).Exec(ctx)
	return wrapError("create", "booking", booking.DuckID, err)
}

func (s *txBookingStore) CloseBooking(ctx context.Context, booking *models.Booking) error {
	result, err := s.tx.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("end_ts = ?", booking.EndTS).
		Set("successful = ?", booking.Successful).
		Where("id = ? AND end_ts IS NULL", booking.ID).
		Exec(ctx)
	if err != nil {
		return wrapError("close", "booking", booking.ID, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return &NotFoundError{Entity: "active booking", ID: booking.ID}
	}
	return nil
}

func (s *txBookingStore) AddUpMinutes(ctx context.Context, duckID, compID, minutes int64) error {
	return s.addMinutes(ctx, duckID, compID, minutes, "up_minutes")
}

func (s *txBookingStore) AddDownMinutes(ctx context.Context, duckID, compID, minutes int64) error {
	return s.addMinutes(ctx, duckID, compID, minutes, "down_minutes")
}

func (s *txBookingStore) addMinutes(ctx context.Context, duckID, compID, minutes int64, column string) error {
	result, err := s.tx.NewUpdate().
		Model((*models.DuckCompetence)(nil)).
		Set(column+" = "+column+" + ?", minutes).
		Where("duck_id = ? AND comp_id = ?", duckID, compID).
		Exec(ctx)
	if err != nil {
		return wrapError("add_minutes", "duck_competence", duckID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return wrapError("add_minutes", "duck_competence", duckID, err)
	}
	if rows > 0 {
		return nil
	}

	dc := &models.DuckCompetence{DuckID: duckID, CompID: compID}
	if column == "up_minutes" {
		dc.UpMinutes = minutes
	} else {
		dc.DownMinutes = minutes
	}
	_, err = s.tx.NewInsert().Model(dc).Exec(ctx)
	return wrapError("add_minutes", "duck_competence", duckID, err)
}

func activeBooking(ctx context.Context, db bun.IDB, duckID int64) (*models.Booking, error) {
	var bookings []*models.Booking
	err := db.NewSelect().
		Model(&bookings).
		Where("duck_id = ?", duckID).
		Where("end_ts IS NULL").
		Scan(ctx)
	if err != nil {
		return nil, wrapError("active", "booking", duckID, err)
	}

	switch len(bookings) {
	case 0:
		return nil, nil
	case 1:
		return bookings[0], nil
	default:
		return nil, ErrDuplicateActiveBooking
	}
}
