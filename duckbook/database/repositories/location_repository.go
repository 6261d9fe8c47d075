package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/duckbook/duckbook/duckbook/database/models"
)

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id int64) (*models.Location, error)
	GetAll(ctx context.Context) ([]*models.Location, error)
}

type locationRepository struct {
	db *bun.DB
}

func NewLocationRepository(db *bun.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	_, err := r.db.NewInsert().Model(location).Exec(ctx)
	return wrapError("create", "location", location.Name, err)
}

func (r *locationRepository) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	location := new(models.Location)
	err := r.db.NewSelect().Model(location).Where("loc.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, wrapError("get", "location", id, err)
	}
	return location, nil
}

func (r *locationRepository) GetAll(ctx context.Context) ([]*models.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var locations []*models.Location
	err := r.db.NewSelect().Model(&locations).Order("name ASC").Scan(ctx)
	if err != nil {
		return nil, wrapError("list", "location", nil, err)
	}
	return locations, nil
}
