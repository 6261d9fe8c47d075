package services

import (
	"context"
	"testing"

	"github.com/duckbook/duckbook/duckbook/database/models"
	"github.com/duckbook/duckbook/duckbook/database/repositories/stubs"
)

func TestSearchDucks(t *testing.T) {
	ducks := stubs.NewDuckRepo(
		&models.Duck{ID: 1, Name: "Donald"},
		&models.Duck{ID: 2, Name: "Dolly"},
		&models.Duck{ID: 3, Name: "Quackers"},
		&models.Duck{ID: 4},
	)
	svc := NewSearchService(ducks)

	tests := []struct {
		name    string
		query   string
		wantIDs map[int64]bool
	}{
		{"exact", "quackers", map[int64]bool{3: true}},
		{"prefix", "don", map[int64]bool{1: true}},
		{"subsequence", "dly", map[int64]bool{2: true}},
		{"no match", "xyzzy", nil},
		{"blank", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.SearchDucks(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("SearchDucks: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("matches = %d, want %d", len(got), len(tt.wantIDs))
			}
			for _, d := range got {
				if !tt.wantIDs[d.ID] {
					t.Errorf("unexpected match: duck %d %q", d.ID, d.Name)
				}
			}
		})
	}
}

func TestSearchDucksSkipsUnnamed(t *testing.T) {
	ducks := stubs.NewDuckRepo(&models.Duck{ID: 1})
	svc := NewSearchService(ducks)

	got, err := svc.SearchDucks(context.Background(), "unnamed")
	if err != nil {
		t.Fatalf("SearchDucks: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("matches = %d, want 0", len(got))
	}
}
