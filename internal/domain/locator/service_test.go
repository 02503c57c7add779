package locator

import (
	"context"
	"testing"

	"github.com/medibot/medibot/internal/platform/geo"
)

type mockStockRepo struct {
	candidates []*Candidate
	names      []string

	lastTerm     string
	lastMinStock int
	lastLimit    int
}

func (m *mockStockRepo) ApprovedPharmacies(_ context.Context) ([]Place, error) {
	var places []Place
	for _, c := range m.candidates {
		places = append(places, c.Place)
	}
	return places, nil
}

func (m *mockStockRepo) SearchStock(_ context.Context, term string, minStock int) ([]*Candidate, error) {
	m.lastTerm = term
	m.lastMinStock = minStock
	var out []*Candidate
	for _, c := range m.candidates {
		kept := &Candidate{Place: c.Place}
		for _, med := range c.Medicines {
			if MatchesTerm(med.Name, term) && med.Stock >= minStock {
				kept.Medicines = append(kept.Medicines, med)
			}
		}
		out = append(out, kept)
	}
	return out, nil
}

func (m *mockStockRepo) SuggestNames(_ context.Context, term string, limit int) ([]string, error) {
	m.lastLimit = limit
	if len(m.names) > limit {
		return m.names[:limit], nil
	}
	return m.names, nil
}

func newTestService(repo *mockStockRepo) *Service {
	return NewService(repo, geo.Point{Latitude: -2.0, Longitude: 30.0}, 100)
}

func TestServiceSearch_ClampsRadiusToMax(t *testing.T) {
	repo := &mockStockRepo{candidates: []*Candidate{
		candidate("Near", -1.95, 30.06, "Aspirin"),
	}}
	svc := newTestService(repo)

	// A 10000km radius is clamped to the configured 100km max; the
	// nearby pharmacy still matches.
	results, err := svc.Search(context.Background(), Filters{Origin: &kigali, RadiusKM: 10000})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestServiceSearch_InvalidInput(t *testing.T) {
	svc := newTestService(&mockStockRepo{})

	if _, err := svc.Search(context.Background(), Filters{SortBy: "price"}); err == nil {
		t.Error("expected invalid sort to be rejected")
	}
	if _, err := svc.Search(context.Background(), Filters{MinStock: -1}); err == nil {
		t.Error("expected negative min_stock to be rejected")
	}
	bad := &geo.Point{Latitude: 91, Longitude: 0}
	if _, err := svc.Search(context.Background(), Filters{Origin: bad}); err == nil {
		t.Error("expected out-of-range coordinates to be rejected")
	}
}

func TestServiceSearch_PassesFiltersToRepo(t *testing.T) {
	repo := &mockStockRepo{}
	svc := newTestService(repo)

	if _, err := svc.Search(context.Background(), Filters{Term: "amox", MinStock: 5}); err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if repo.lastTerm != "amox" || repo.lastMinStock != 5 {
		t.Errorf("expected term/min_stock forwarded, got %q/%d", repo.lastTerm, repo.lastMinStock)
	}
}

func TestSuggestions(t *testing.T) {
	repo := &mockStockRepo{names: []string{"A", "B", "C", "D", "E", "F", "G"}}
	svc := newTestService(repo)

	names, err := svc.Suggestions(context.Background(), "a")
	if err != nil {
		t.Fatalf("Suggestions() error: %v", err)
	}
	if len(names) != 5 {
		t.Errorf("expected top 5 suggestions, got %d", len(names))
	}

	empty, err := svc.Suggestions(context.Background(), "")
	if err != nil {
		t.Fatalf("Suggestions() error: %v", err)
	}
	if empty != nil {
		t.Errorf("empty term should return nothing, got %v", empty)
	}
}

func TestTiles(t *testing.T) {
	svc := newTestService(&mockStockRepo{})

	resp := svc.Tiles()
	if len(resp.Layers) != 3 {
		t.Fatalf("expected 3 tile layers, got %d", len(resp.Layers))
	}
	if resp.DefaultCenter.Latitude != -2.0 || resp.DefaultCenter.Longitude != 30.0 {
		t.Errorf("unexpected default center: %+v", resp.DefaultCenter)
	}
}
