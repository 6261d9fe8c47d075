package repositories

import "github.com/uptrace/bun"

// Repositories bundles every repository for dependency wiring.
type Repositories struct {
	Species    SpeciesRepository
	Location   LocationRepository
	Competence CompetenceRepository
	Duck       DuckRepository
	Booking    BookingRepository
	DuckName   DuckNameRepository
	User       UserRepository
}

func New(db *bun.DB) *Repositories {
	return &Repositories{
		Species:    NewSpeciesRepository(db),
		Location:   NewLocationRepository(db),
		Competence: NewCompetenceRepository(db),
		Duck:       NewDuckRepository(db),
		Booking:    NewBookingRepository(db),
		DuckName:   NewDuckNameRepository(db),
		User:       NewUserRepository(db),
	}
}
