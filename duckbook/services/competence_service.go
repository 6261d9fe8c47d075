package services

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/duckbook/duckbook/duckbook/database/models"
	"github.com/duckbook/duckbook/duckbook/database/repositories"
)

// CompetenceService registers competences and guards against
// near-duplicate names.
type CompetenceService struct {
	comps         repositories.CompetenceRepository
	minSimilarity int
}

func NewCompetenceService(comps repositories.CompetenceRepository, minSimilarity int) *CompetenceService {
	return &CompetenceService{comps: comps, minSimilarity: minSimilarity}
}

// Create registers a new competence. Name collisions come back as a
// ConflictError from the repository.
func (s *CompetenceService) Create(ctx context.Context, name string, addedBy int64) (*models.Competence, error) {
	comp := &models.Competence{
		Name:    name,
		AddedBy: addedBy,
		AddedAt: time.Now(),
	}
	if err := s.comps.Create(ctx, comp); err != nil {
		return nil, err
	}

	slog.Info("Competence added",
		slog.String("type", "sys"),
		slog.String("name", name),
		slog.Int64("added_by", addedBy))
	return comp, nil
}

func (s *CompetenceService) Get(ctx context.Context, id int64) (*models.Competence, error) {
	return s.comps.GetByID(ctx, id)
}

func (s *CompetenceService) List(ctx context.Context) ([]*models.Competence, error) {
	return s.comps.GetAll(ctx)
}

// SimilarNames returns existing competence names whose similarity to
// the query is strictly above the configured threshold, so the UI can
// warn before a near-duplicate gets registered.
func (s *CompetenceService) SimilarNames(ctx context.Context, query string) ([]string, error) {
	names, err := s.comps.GetAllNames(ctx)
	if err != nil {
		return nil, err
	}

	var similar []string
	for _, name := range names {
		if similarityRatio(query, name) > s.minSimilarity {
			similar = append(similar, name)
		}
	}
	return similar, nil
}

// similarityRatio scores two strings on a 0-100 scale from their
// case-insensitive edit distance. Identical strings score 100.
func similarityRatio(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 100
	}

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 100
	}

	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(longest))))
}
