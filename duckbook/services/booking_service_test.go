package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/duckbook/duckbook/duckbook/database/models"
	"github.com/duckbook/duckbook/duckbook/database/repositories"
	"github.com/duckbook/duckbook/duckbook/database/repositories/stubs"
	"github.com/duckbook/duckbook/duckbook/ducklevel"
)

func newTestBookingService(t *testing.T, bookings *stubs.BookingRepo) *BookingService {
	t.Helper()
	calc := ducklevel.NewCalculator(ducklevel.NewDefaultConfig())
	ducks := stubs.NewDuckRepo(&models.Duck{ID: 1, Name: "Donald"})
	comps := stubs.NewCompetenceRepo(&models.Competence{ID: 1, Name: "Perl"})
	return NewBookingService(ducks, comps, bookings, calc)
}

func TestBookUnknownDuckAndCompetence(t *testing.T) {
	svc := newTestBookingService(t, stubs.NewBookingRepo())

	if _, err := svc.Book(context.Background(), 99, 1, 1, false); !repositories.IsNotFound(err) {
		t.Errorf("unknown duck: got %v, want not found", err)
	}
	if _, err := svc.Book(context.Background(), 1, 99, 1, false); !repositories.IsNotFound(err) {
		t.Errorf("unknown competence: got %v, want not found", err)
	}
}

func TestBookForceSemantics(t *testing.T) {
	tests := []struct {
		name       string
		upMinutes  int64
		force      bool
		want       BookingStatus
		wantActive int
	}{
		{"untrained without force", 0, false, StatusBadComp, 0},
		{"untrained with force", 0, true, StatusOK, 1},
		{"warn level without force", 200, false, StatusBadComp, 0},
		{"warn level with force", 200, true, StatusOK, 1},
		{"trained without force", 20000, false, StatusOK, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := stubs.NewBookingRepo()
			if tt.upMinutes > 0 {
				bookings.SetMinutes(1, 1, tt.upMinutes, 0)
			}
			svc := newTestBookingService(t, bookings)

			status, err := svc.Book(context.Background(), 1, 1, 7, tt.force)
			if err != nil {
				t.Fatalf("Book: %v", err)
			}
			if status != tt.want {
				t.Errorf("status = %q, want %q", status, tt.want)
			}
			if got := bookings.ActiveCount(1); got != tt.wantActive {
				t.Errorf("active bookings = %d, want %d", got, tt.wantActive)
			}
		})
	}
}

func TestBookAlreadyBookedWinsOverBadComp(t *testing.T) {
	bookings := stubs.NewBookingRepo()
	svc := newTestBookingService(t, bookings)

	if _, err := svc.Book(context.Background(), 1, 1, 7, true); err != nil {
		t.Fatalf("first Book: %v", err)
	}

	// The duck is untrained, so without the active booking this would
	// be bad-comp. The active booking must win, forced or not.
	for _, force := range []bool{false, true} {
		status, err := svc.Book(context.Background(), 1, 1, 8, force)
		if err != nil {
			t.Fatalf("Book(force=%v): %v", force, err)
		}
		if status != StatusAlreadyBooked {
			t.Errorf("Book(force=%v) = %q, want %q", force, status, StatusAlreadyBooked)
		}
	}
	if got := bookings.ActiveCount(1); got != 1 {
		t.Errorf("active bookings = %d, want 1", got)
	}
}

func TestBookDuplicateActiveBookingIsFatal(t *testing.T) {
	bookings := stubs.NewBookingRepo()
	bookings.AddActive(1, 1, 1, time.Now())
	bookings.AddActive(1, 2, 1, time.Now())
	svc := newTestBookingService(t, bookings)

	_, err := svc.Book(context.Background(), 1, 1, 7, true)
	if err != repositories.ErrDuplicateActiveBooking {
		t.Errorf("got %v, want ErrDuplicateActiveBooking", err)
	}
}

func TestReleaseCreditsMinutes(t *testing.T) {
	bookings := stubs.NewBookingRepo()
	bookings.AddActive(1, 7, 1, time.Now().Add(-90*time.Minute))
	svc := newTestBookingService(t, bookings)

	closed, err := svc.Release(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if closed.EndTS == nil {
		t.Fatal("released booking still active")
	}
	if got := bookings.ActiveCount(1); got != 0 {
		t.Errorf("active bookings = %d, want 0", got)
	}

	dc := bookings.Records[[2]int64{1, 1}]
	if dc == nil {
		t.Fatal("no usage record created")
	}
	if dc.UpMinutes != 90 {
		t.Errorf("up minutes = %d, want 90", dc.UpMinutes)
	}
	if dc.DownMinutes != 0 {
		t.Errorf("down minutes = %d, want 0", dc.DownMinutes)
	}
}

func TestReleaseByNonOwner(t *testing.T) {
	bookings := stubs.NewBookingRepo()
	bookings.AddActive(1, 7, 1, time.Now())
	svc := newTestBookingService(t, bookings)

	if _, err := svc.Release(context.Background(), 1, 8); err != ErrNotBookingOwner {
		t.Errorf("got %v, want ErrNotBookingOwner", err)
	}
	if got := bookings.ActiveCount(1); got != 1 {
		t.Errorf("active bookings = %d, want 1", got)
	}
}

func TestReleaseWithoutActiveBooking(t *testing.T) {
	svc := newTestBookingService(t, stubs.NewBookingRepo())

	if _, err := svc.Release(context.Background(), 1, 7); !repositories.IsNotFound(err) {
		t.Errorf("got %v, want not found", err)
	}
}

func TestBookedBy(t *testing.T) {
	bookings := stubs.NewBookingRepo()
	svc := newTestBookingService(t, bookings)

	holder, err := svc.BookedBy(context.Background(), 1)
	if err != nil {
		t.Fatalf("BookedBy: %v", err)
	}
	if holder != nil {
		t.Errorf("holder = %v, want nil", *holder)
	}

	if _, err := svc.Book(context.Background(), 1, 1, 7, true); err != nil {
		t.Fatalf("Book: %v", err)
	}
	holder, err = svc.BookedBy(context.Background(), 1)
	if err != nil {
		t.Fatalf("BookedBy: %v", err)
	}
	if holder == nil || *holder != 7 {
		t.Errorf("holder = %v, want 7", holder)
	}
}

func TestDPX(t *testing.T) {
	bookings := stubs.NewBookingRepo()
	svc := newTestBookingService(t, bookings)

	dpx, err := svc.DPX(context.Background(), 1)
	if err != nil {
		t.Fatalf("DPX: %v", err)
	}
	if dpx != 0 {
		t.Errorf("dpx with no history = %v, want 0", dpx)
	}

	bookings.AddTerminated(1, 24*time.Hour)
	bookings.AddTerminated(2, 48*time.Hour)

	dpx, err = svc.DPX(context.Background(), 1)
	if err != nil {
		t.Fatalf("DPX: %v", err)
	}
	if math.Abs(dpx-1.0/3.0) > 1e-9 {
		t.Errorf("dpx = %v, want 1/3", dpx)
	}

	dpx, err = svc.DPX(context.Background(), 2)
	if err != nil {
		t.Fatalf("DPX: %v", err)
	}
	if math.Abs(dpx-2.0/3.0) > 1e-9 {
		t.Errorf("dpx = %v, want 2/3", dpx)
	}
}

func TestDPXCacheInvalidatedOnRelease(t *testing.T) {
	bookings := stubs.NewBookingRepo()
	bookings.AddTerminated(1, 24*time.Hour)
	svc := newTestBookingService(t, bookings)

	dpx, err := svc.DPX(context.Background(), 1)
	if err != nil {
		t.Fatalf("DPX: %v", err)
	}
	if dpx != 1 {
		t.Errorf("dpx = %v, want 1", dpx)
	}

	// A second duck's terminated booking dilutes the first duck's
	// share once the cache is purged by a release.
	bookings.AddTerminated(2, 24*time.Hour)
	bookings.AddActive(1, 7, 1, time.Now().Add(-time.Minute))
	if _, err := svc.Release(context.Background(), 1, 7); err != nil {
		t.Fatalf("Release: %v", err)
	}

	dpx, err = svc.DPX(context.Background(), 1)
	if err != nil {
		t.Fatalf("DPX: %v", err)
	}
	if dpx >= 1 {
		t.Errorf("dpx after release = %v, want < 1", dpx)
	}
}
