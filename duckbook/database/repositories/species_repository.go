package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/duckbook/duckbook/duckbook/database/models"
)

type SpeciesRepository interface {
	Create(ctx context.Context, species *models.Species) error
	GetByID(ctx context.Context, id int64) (*models.Species, error)
	GetAll(ctx context.Context) ([]*models.Species, error)
}

type speciesRepository struct {
	db *bun.DB
}

func NewSpeciesRepository(db *bun.DB) SpeciesRepository {
	return &speciesRepository{db: db}
}

func (r *speciesRepository) Create(ctx context.Context, species *models.Species) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	exists, err := r.db.NewSelect().
		Model((*models.Species)(nil)).
		Where("name = ?", species.Name).
		Exists(ctx)
	if err != nil {
		return wrapError("create", "species", species.Name, err)
	}
	if exists {
		return &ConflictError{Entity: "species", Field: "name", Value: species.Name}
	}

	_, err = r.db.NewInsert().Model(species).Exec(ctx)
	return wrapError("create", "species", species.Name, err)
}

func (r *speciesRepository) GetByID(ctx context.Context, id int64) (*models.Species, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	species := new(models.Species)
	err := r.db.NewSelect().Model(species).Where("sp.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, wrapError("get", "species", id, err)
	}
	return species, nil
}

func (r *speciesRepository) GetAll(ctx context.Context) ([]*models.Species, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var species []*models.Species
	err := r.db.NewSelect().Model(&species).Order("name ASC").Scan(ctx)
	if err != nil {
		return nil, wrapError("list", "species", nil, err)
	}
	return species, nil
}
