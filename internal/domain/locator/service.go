package locator

import (
	"context"
	"fmt"

	"github.com/medibot/medibot/internal/platform/geo"
)

const suggestionLimit = 5

type Service struct {
	repo          StockRepository
	defaultCenter geo.Point
	maxRadiusKM   float64
}

func NewService(repo StockRepository, defaultCenter geo.Point, maxRadiusKM float64) *Service {
	return &Service{repo: repo, defaultCenter: defaultCenter, maxRadiusKM: maxRadiusKM}
}

func (s *Service) Pharmacies(ctx context.Context) ([]Place, error) {
	return s.repo.ApprovedPharmacies(ctx)
}

func (s *Service) Search(ctx context.Context, f Filters) ([]Result, error) {
	if f.SortBy != "" && f.SortBy != SortDistance && f.SortBy != SortAvailability {
		return nil, fmt.Errorf("invalid sort: %s", f.SortBy)
	}
	if f.MinStock < 0 {
		return nil, fmt.Errorf("min_stock cannot be negative")
	}
	if f.RadiusKM <= 0 {
		f.RadiusKM = DefaultRadiusKM
	}
	if f.RadiusKM > s.maxRadiusKM {
		f.RadiusKM = s.maxRadiusKM
	}
	if f.Origin != nil {
		if f.Origin.Latitude < -90 || f.Origin.Latitude > 90 ||
			f.Origin.Longitude < -180 || f.Origin.Longitude > 180 {
			return nil, fmt.Errorf("coordinates out of range")
		}
	}

	candidates, err := s.repo.SearchStock(ctx, f.Term, f.MinStock)
	if err != nil {
		return nil, err
	}
	return Search(candidates, f), nil
}

func (s *Service) Suggestions(ctx context.Context, term string) ([]string, error) {
	if term == "" {
		return nil, nil
	}
	return s.repo.SuggestNames(ctx, term, suggestionLimit)
}

func (s *Service) Tiles() TilesResponse {
	return TilesResponse{
		Layers:        geo.TileLayers(),
		DefaultCenter: s.defaultCenter,
	}
}
