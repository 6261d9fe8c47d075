package services

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/duckbook/duckbook/duckbook/database/models"
	"github.com/duckbook/duckbook/duckbook/database/repositories"
)

// duckSearchItems implements fuzzy.Source over the duck pool.
type duckSearchItems []duckSearchItem

type duckSearchItem struct {
	Duck *models.Duck
	Name string
}

func (items duckSearchItems) String(i int) string {
	return items[i].Name
}

func (items duckSearchItems) Len() int {
	return len(items)
}

// SearchService finds ducks by approximate name.
type SearchService struct {
	ducks repositories.DuckRepository
}

func NewSearchService(ducks repositories.DuckRepository) *SearchService {
	return &SearchService{ducks: ducks}
}

// SearchDucks returns ducks whose name fuzzily matches the query,
// best match first. Unnamed ducks never match.
func (s *SearchService) SearchDucks(ctx context.Context, query string) ([]*models.Duck, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	ducks, err := s.ducks.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make(duckSearchItems, 0, len(ducks))
	for _, d := range ducks {
		if d.Name == "" {
			continue
		}
		items = append(items, duckSearchItem{Duck: d, Name: strings.ToLower(d.Name)})
	}

	matches := fuzzy.FindFrom(query, items)
	results := make([]*models.Duck, len(matches))
	for i, match := range matches {
		results[i] = items[match.Index].Duck
	}
	return results, nil
}
