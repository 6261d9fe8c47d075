// Package stubs provides in-memory repository implementations for
// testing without a database.
package stubs

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/duckbook/duckbook/duckbook/database/models"
	"github.com/duckbook/duckbook/duckbook/database/repositories"
)

// DuckRepo is an in-memory DuckRepository.
type DuckRepo struct {
	mu     sync.RWMutex
	Ducks  map[int64]*models.Duck
	nextID int64
}

func NewDuckRepo(ducks ...*models.Duck) *DuckRepo {
	r := &DuckRepo{Ducks: make(map[int64]*models.Duck), nextID: 1}
	for _, d := range ducks {
		r.Ducks[d.ID] = d
		if d.ID >= r.nextID {
			r.nextID = d.ID + 1
		}
	}
	return r
}

func (r *DuckRepo) Create(_ context.Context, duck *models.Duck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	duck.ID = r.nextID
	r.nextID++
	r.Ducks[duck.ID] = duck
	return nil
}

func (r *DuckRepo) GetByID(_ context.Context, id int64) (*models.Duck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	duck, ok := r.Ducks[id]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "duck", ID: id}
	}
	return duck, nil
}

func (r *DuckRepo) GetDetailed(ctx context.Context, id int64) (*models.Duck, error) {
	return r.GetByID(ctx, id)
}

func (r *DuckRepo) GetAll(_ context.Context) ([]*models.Duck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*models.Duck, 0, len(r.Ducks))
	for _, d := range r.Ducks {
		all = append(all, d)
	}
	return all, nil
}

func (r *DuckRepo) SetName(_ context.Context, id int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	duck, ok := r.Ducks[id]
	if !ok {
		return &repositories.NotFoundError{Entity: "duck", ID: id}
	}
	duck.Name = name
	return nil
}

func (r *DuckRepo) SetPhotoKey(_ context.Context, id int64, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	duck, ok := r.Ducks[id]
	if !ok {
		return &repositories.NotFoundError{Entity: "duck", ID: id}
	}
	duck.PhotoKey = key
	return nil
}

func (r *DuckRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Ducks), nil
}

// SpeciesRepo is an in-memory SpeciesRepository.
type SpeciesRepo struct {
	mu      sync.RWMutex
	Species map[int64]*models.Species
}

func NewSpeciesRepo(species ...*models.Species) *SpeciesRepo {
	r := &SpeciesRepo{Species: make(map[int64]*models.Species)}
	for _, sp := range species {
		r.Species[sp.ID] = sp
	}
	return r
}

func (r *SpeciesRepo) Create(_ context.Context, sp *models.Species) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp.ID = int64(len(r.Species) + 1)
	r.Species[sp.ID] = sp
	return nil
}

func (r *SpeciesRepo) GetByID(_ context.Context, id int64) (*models.Species, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sp, ok := r.Species[id]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "species", ID: id}
	}
	return sp, nil
}

func (r *SpeciesRepo) GetAll(_ context.Context) ([]*models.Species, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*models.Species, 0, len(r.Species))
	for _, sp := range r.Species {
		all = append(all, sp)
	}
	return all, nil
}

// LocationRepo is an in-memory LocationRepository.
type LocationRepo struct {
	mu        sync.RWMutex
	Locations map[int64]*models.Location
}

func NewLocationRepo(locations ...*models.Location) *LocationRepo {
	r := &LocationRepo{Locations: make(map[int64]*models.Location)}
	for _, loc := range locations {
		r.Locations[loc.ID] = loc
	}
	return r
}

func (r *LocationRepo) Create(_ context.Context, loc *models.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	loc.ID = int64(len(r.Locations) + 1)
	r.Locations[loc.ID] = loc
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, id int64) (*models.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loc, ok := r.Locations[id]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "location", ID: id}
	}
	return loc, nil
}

func (r *LocationRepo) GetAll(_ context.Context) ([]*models.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*models.Location, 0, len(r.Locations))
	for _, loc := range r.Locations {
		all = append(all, loc)
	}
	return all, nil
}

// CompetenceRepo is an in-memory CompetenceRepository.
type CompetenceRepo struct {
	mu     sync.RWMutex
	Comps  map[int64]*models.Competence
	nextID int64
}

func NewCompetenceRepo(comps ...*models.Competence) *CompetenceRepo {
	r := &CompetenceRepo{Comps: make(map[int64]*models.Competence), nextID: 1}
	for _, c := range comps {
		r.Comps[c.ID] = c
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *CompetenceRepo) Create(_ context.Context, comp *models.Competence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Comps {
		if strings.EqualFold(existing.Name, comp.Name) {
			return &repositories.ConflictError{Entity: "competence", Field: "name", Value: comp.Name}
		}
	}
	comp.ID = r.nextID
	r.nextID++
	r.Comps[comp.ID] = comp
	return nil
}

func (r *CompetenceRepo) GetByID(_ context.Context, id int64) (*models.Competence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	comp, ok := r.Comps[id]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "competence", ID: id}
	}
	return comp, nil
}

func (r *CompetenceRepo) GetAll(_ context.Context) ([]*models.Competence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*models.Competence, 0, len(r.Comps))
	for _, c := range r.Comps {
		all = append(all, c)
	}
	return all, nil
}

func (r *CompetenceRepo) GetAllNames(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.Comps))
	for _, c := range r.Comps {
		names = append(names, c.Name)
	}
	return names, nil
}

// BookingRepo is an in-memory BookingRepository. It doubles as the
// BookingStore handed to WithDuckLock callbacks; the lock is a plain
// mutex since there is no transaction to scope it to.
type BookingRepo struct {
	mu       sync.Mutex
	Bookings []*models.Booking
	Records  map[[2]int64]*models.DuckCompetence
	nextID   int64
}

func NewBookingRepo() *BookingRepo {
	return &BookingRepo{Records: make(map[[2]int64]*models.DuckCompetence), nextID: 1}
}

// SetMinutes seeds a usage record for a (duck, comp) pair.
func (r *BookingRepo) SetMinutes(duckID, compID, up, down int64) {
	r.Records[[2]int64{duckID, compID}] = &models.DuckCompetence{
		DuckID:      duckID,
		CompID:      compID,
		UpMinutes:   up,
		DownMinutes: down,
	}
}

// AddTerminated seeds a terminated booking of the given duration.
func (r *BookingRepo) AddTerminated(duckID int64, duration time.Duration) {
	start := time.Now().Add(-duration - time.Hour)
	end := start.Add(duration)
	r.Bookings = append(r.Bookings, &models.Booking{
		ID:      r.nextID,
		DuckID:  duckID,
		StartTS: start,
		EndTS:   &end,
	})
	r.nextID++
}

// AddActive seeds an active booking held by a user.
func (r *BookingRepo) AddActive(duckID, userID, compID int64, start time.Time) *models.Booking {
	booking := &models.Booking{
		ID:         r.nextID,
		DuckID:     duckID,
		UserID:     userID,
		CompReqID:  compID,
		StartTS:    start,
		Successful: true,
	}
	r.nextID++
	r.Bookings = append(r.Bookings, booking)
	return booking
}

// ActiveCount reports how many active bookings a duck holds.
func (r *BookingRepo) ActiveCount(duckID int64) int {
	count := 0
	for _, b := range r.Bookings {
		if b.DuckID == duckID && b.EndTS == nil {
			count++
		}
	}
	return count
}

func (r *BookingRepo) WithDuckLock(ctx context.Context, _ int64, fn func(ctx context.Context, store repositories.BookingStore) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, (*lockedBookingStore)(r))
}

func (r *BookingRepo) ActiveBooking(ctx context.Context, duckID int64) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeBooking(duckID)
}

func (r *BookingRepo) activeBooking(duckID int64) (*models.Booking, error) {
	var found *models.Booking
	for _, b := range r.Bookings {
		if b.DuckID == duckID && b.EndTS == nil {
			if found != nil {
				return nil, repositories.ErrDuplicateActiveBooking
			}
			found = b
		}
	}
	return found, nil
}

func (r *BookingRepo) GetForDuck(_ context.Context, duckID int64) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.Bookings {
		if b.DuckID == duckID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *BookingRepo) TotalBookedSeconds(_ context.Context) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, b := range r.Bookings {
		if b.EndTS != nil {
			sum += b.EndTS.Sub(b.StartTS).Seconds()
		}
	}
	return sum, nil
}

func (r *BookingRepo) DuckBookedSeconds(_ context.Context, duckID int64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, b := range r.Bookings {
		if b.DuckID == duckID && b.EndTS != nil {
			sum += b.EndTS.Sub(b.StartTS).Seconds()
		}
	}
	return sum, nil
}

// lockedBookingStore is the BookingRepo viewed from inside
// WithDuckLock, where the mutex is already held.
type lockedBookingStore BookingRepo

func (s *lockedBookingStore) ActiveBooking(_ context.Context, duckID int64) (*models.Booking, error) {
	return (*BookingRepo)(s).activeBooking(duckID)
}

func (s *lockedBookingStore) DuckCompetence(_ context.Context, duckID, compID int64) (*models.DuckCompetence, error) {
	return s.Records[[2]int64{duckID, compID}], nil
}

func (s *lockedBookingStore) CreateBooking(_ context.Context, booking *models.Booking) error {
	booking.ID = s.nextID
	s.nextID++
	s.Bookings = append(s.Bookings, booking)
	return nil
}

func (s *lockedBookingStore) CloseBooking(_ context.Context, booking *models.Booking) error {
	for _, b := range s.Bookings {
		if b.ID == booking.ID {
			b.EndTS = booking.EndTS
			b.Successful = booking.Successful
			return nil
		}
	}
	return &repositories.NotFoundError{Entity: "active booking", ID: booking.ID}
}

func (s *lockedBookingStore) AddUpMinutes(_ context.Context, duckID, compID, minutes int64) error {
	key := [2]int64{duckID, compID}
	if dc, ok := s.Records[key]; ok {
		dc.UpMinutes += minutes
		return nil
	}
	s.Records[key] = &models.DuckCompetence{DuckID: duckID, CompID: compID, UpMinutes: minutes}
	return nil
}

func (s *lockedBookingStore) AddDownMinutes(_ context.Context, duckID, compID, minutes int64) error {
	key := [2]int64{duckID, compID}
	if dc, ok := s.Records[key]; ok {
		dc.DownMinutes += minutes
		return nil
	}
	s.Records[key] = &models.DuckCompetence{DuckID: duckID, CompID: compID, DownMinutes: minutes}
	return nil
}

// UserRepo is an in-memory UserRepository.
type UserRepo struct {
	mu     sync.RWMutex
	Users  map[int64]*models.User
	nextID int64
}

func NewUserRepo(users ...*models.User) *UserRepo {
	r := &UserRepo{Users: make(map[int64]*models.User), nextID: 1}
	for _, u := range users {
		r.Users[u.ID] = u
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
	}
	return r
}

func (r *UserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Users {
		if existing.Username == user.Username {
			return &repositories.ConflictError{Entity: "user", Field: "username", Value: user.Username}
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.Users[user.ID] = user
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.Users[id]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "user", ID: id}
	}
	return user, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.Users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, &repositories.NotFoundError{Entity: "user", ID: username}
}

// NameRepo is an in-memory DuckNameRepository.
type NameRepo struct {
	mu     sync.Mutex
	Names  map[int64]*models.DuckName
	Votes  []*models.DuckNameVote
	nextID int64
}

func NewNameRepo() *NameRepo {
	return &NameRepo{Names: make(map[int64]*models.DuckName), nextID: 1}
}

func (r *NameRepo) Create(_ context.Context, name *models.DuckName) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name.ID = r.nextID
	r.nextID++
	r.Names[name.ID] = name
	return nil
}

func (r *NameRepo) GetByID(_ context.Context, id int64) (*models.DuckName, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.Names[id]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "duck_name", ID: id}
	}
	return name, nil
}

func (r *NameRepo) GetForDuck(_ context.Context, duckID int64) ([]*models.DuckName, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.DuckName
	for _, n := range r.Names {
		if n.DuckID == duckID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *NameRepo) Close(_ context.Context, id, closedBy int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.Names[id]
	if !ok {
		return &repositories.NotFoundError{Entity: "duck_name", ID: id}
	}
	now := time.Now()
	name.ClosedBy = &closedBy
	name.ClosedAt = &now
	return nil
}

func (r *NameRepo) Vote(_ context.Context, vote *models.DuckNameVote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	vote.ID = int64(len(r.Votes) + 1)
	r.Votes = append(r.Votes, vote)
	return nil
}

func (r *NameRepo) VoteCounts(_ context.Context, nameID int64) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var up, down int
	for _, v := range r.Votes {
		if v.DuckNameID != nameID {
			continue
		}
		if v.Upvote {
			up++
		} else {
			down++
		}
	}
	return up, down, nil
}
