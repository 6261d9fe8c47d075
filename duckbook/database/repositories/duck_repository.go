package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/duckbook/duckbook/duckbook/database/models"
)

type DuckRepository interface {
	Create(ctx context.Context, duck *models.Duck) error
	GetByID(ctx context.Context, id int64) (*models.Duck, error)
	// GetDetailed loads the duck with species, location and competence
	// relations for the detail views.
	GetDetailed(ctx context.Context, id int64) (*models.Duck, error)
	GetAll(ctx context.Context) ([]*models.Duck, error)
	SetName(ctx context.Context, id int64, name string) error
	SetPhotoKey(ctx context.Context, id int64, key string) error
	Count(ctx context.Context) (int, error)
}

type duckRepository struct {
	db *bun.DB
}

func NewDuckRepository(db *bun.DB) DuckRepository {
	return &duckRepository{db: db}
}

func (r *duckRepository) Create(ctx context.Context, duck *models.Duck) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	_, err := r.db.NewInsert().Model(duck).Exec(ctx)
	return wrapError("create", "duck", nil, err)
}

func (r *duckRepository) GetByID(ctx context.Context, id int64) (*models.Duck, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	duck := new(models.Duck)
	err := r.db.NewSelect().Model(duck).Where("d.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, wrapError("get", "duck", id, err)
	}
	return duck, nil
}

func (r *duckRepository) GetDetailed(ctx context.Context, id int64) (*models.Duck, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	duck := new(models.Duck)
	err := r.db.NewSelect().
		Model(duck).
		Relation("Species").
		Relation("Location").
		Relation("Competences").
		Relation("Competences.Comp").
		Where("d.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapError("get_detailed", "duck", id, err)
	}
	return duck, nil
}

func (r *duckRepository) GetAll(ctx context.Context) ([]*models.Duck, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var ducks []*models.Duck
	err := r.db.NewSelect().
		Model(&ducks).
		Relation("Species").
		Relation("Location").
		Order("d.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrapError("list", "duck", nil, err)
	}
	return ducks, nil
}

func (r *duckRepository) SetName(ctx context.Context, id int64, name string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	result, err := r.db.NewUpdate().
		Model((*models.Duck)(nil)).
		Set("name = ?", name).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return wrapError("set_name", "duck", id, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return &NotFoundError{Entity: "duck", ID: id}
	}
	return nil
}

func (r *duckRepository) SetPhotoKey(ctx context.Context, id int64, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	result, err := r.db.NewUpdate().
		Model((*models.Duck)(nil)).
		Set("photo_key = ?", key).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return wrapError("set_photo", "duck", id, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return &NotFoundError{Entity: "duck", ID: id}
	}
	return nil
}

func (r *duckRepository) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	count, err := r.db.NewSelect().Model((*models.Duck)(nil)).Count(ctx)
	if err != nil {
		return 0, wrapError("count", "duck", nil, err)
	}
	return count, nil
}
