package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/duckbook/duckbook/duckbook/database/models"
)

type DuckNameRepository interface {
	Create(ctx context.Context, name *models.DuckName) error
	GetByID(ctx context.Context, id int64) (*models.DuckName, error)
	GetForDuck(ctx context.Context, duckID int64) ([]*models.DuckName, error)
	Close(ctx context.Context, id, closedBy int64) error
	Vote(ctx context.Context, vote *models.DuckNameVote) error
	VoteCounts(ctx context.Context, nameID int64) (up int, down int, err error)
}

type duckNameRepository struct {
	db *bun.DB
}

func NewDuckNameRepository(db *bun.DB) DuckNameRepository {
	return &duckNameRepository{db: db}
}

func (r *duckNameRepository) Create(ctx context.Context, name *models.DuckName) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	_, err := r.db.NewInsert().Model(name).Exec(ctx)
	return wrapError("create", "duck_name", name.Name, err)
}

func (r *duckNameRepository) GetByID(ctx context.Context, id int64) (*models.DuckName, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	name := new(models.DuckName)
	err := r.db.NewSelect().Model(name).Where("dn.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, wrapError("get", "duck_name", id, err)
	}
	return name, nil
}

func (r *duckNameRepository) GetForDuck(ctx context.Context, duckID int64) ([]*models.DuckName, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var names []*models.DuckName
	err := r.db.NewSelect().
		Model(&names).
		Where("duck_id = ?", duckID).
		Order("suggested_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrapError("list", "duck_name", duckID, err)
	}
	return names, nil
}

func (r *duckNameRepository) Close(ctx context.Context, id, closedBy int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	result, err := r.db.NewUpdate().
		Model((*models.DuckName)(nil)).
		Set("closed_by = ?", closedBy).
		Set("closed_at = ?", time.Now()).
		Where("id = ? AND closed_at IS NULL", id).
		Exec(ctx)
	if err != nil {
		return wrapError("close", "duck_name", id, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return &NotFoundError{Entity: "open duck name", ID: id}
	}
	return nil
}

func (r *duckNameRepository) Vote(ctx context.Context, vote *models.DuckNameVote) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	_, err := r.db.NewInsert().Model(vote).Exec(ctx)
	return wrapError("vote", "duck_name_vote", vote.DuckNameID, err)
}

func (r *duckNameRepository) VoteCounts(ctx context.Context, nameID int64) (int, int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	up, err := r.db.NewSelect().
		Model((*models.DuckNameVote)(nil)).
		Where("duck_name_id = ? AND upvote", nameID).
		Count(ctx)
	if err != nil {
		return 0, 0, wrapError("count_votes", "duck_name_vote", nameID, err)
	}

	down, err := r.db.NewSelect().
		Model((*models.DuckNameVote)(nil)).
		Where("duck_name_id = ? AND NOT upvote", nameID).
		Count(ctx)
	if err != nil {
		return 0, 0, wrapError("count_votes", "duck_name_vote", nameID, err)
	}

	return up, down, nil
}
