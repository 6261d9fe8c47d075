package repositories

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/duckbook/duckbook/duckbook/database/models"
)

type CompetenceRepository interface {
	Create(ctx context.Context, comp *models.Competence) error
	GetByID(ctx context.Context, id int64) (*models.Competence, error)
	GetAll(ctx context.Context) ([]*models.Competence, error)
	GetAllNames(ctx context.Context) ([]string, error)
}

type competenceRepository struct {
	db *bun.DB
}

func NewCompetenceRepository(db *bun.DB) CompetenceRepository {
	return &competenceRepository{db: db}
}

func (r *competenceRepository) Create(ctx context.Context, comp *models.Competence) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	exists, err := r.db.NewSelect().
		Model((*models.Competence)(nil)).
		Where("LOWER(name) = LOWER(?)", comp.Name).
		Exists(ctx)
	if err != nil {
		return wrapError("create", "competence", comp.Name, err)
	}
	if exists {
		return &ConflictError{Entity: "competence", Field: "name", Value: comp.Name}
	}

	_, err = r.db.NewInsert().Model(comp).Exec(ctx)
	return wrapError("create", "competence", comp.Name, err)
}

func (r *competenceRepository) GetByID(ctx context.Context, id int64) (*models.Competence, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	comp := new(models.Competence)
	err := r.db.NewSelect().Model(comp).Where("c.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, wrapError("get", "competence", id, err)
	}
	return comp, nil
}

func (r *competenceRepository) GetAll(ctx context.Context) ([]*models.Competence, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var comps []*models.Competence
	err := r.db.NewSelect().Model(&comps).Order("name ASC").Scan(ctx)
	if err != nil {
		return nil, wrapError("list", "competence", nil, err)
	}
	return comps, nil
}

func (r *competenceRepository) GetAllNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var names []string
	err := r.db.NewSelect().
		Model((*models.Competence)(nil)).
		Column("name").
		Order("name ASC").
		Scan(ctx, &names)
	if err != nil {
		return nil, wrapError("list_names", "competence", nil, err)
	}
	return names, nil
}
