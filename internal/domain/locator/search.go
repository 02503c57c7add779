package locator

import (
	"sort"
	"strings"

	"github.com/medibot/medibot/internal/platform/geo"
)

// Search ranks candidate pharmacies against the filters. It is pure:
// candidates in, results out, no I/O. The repository has already
// applied the term and stock filters to the medicine lists; this pass
// drops empty candidates, applies the radius, and sorts.
func Search(candidates []*Candidate, f Filters) []Result {
	radius := f.RadiusKM
	if radius <= 0 {
		radius = DefaultRadiusKM
	}

	var results []Result
	for _, c := range candidates {
		if len(c.Medicines) == 0 {
			continue
		}
		r := Result{Place: c.Place, Medicines: c.Medicines}
		if f.Origin != nil {
			if !hasCoordinates(c.Place) {
				// No coordinates means no distance ranking; once the
				// client supplies a location these are unrankable and
				// dropped.
				continue
			}
			d := geo.Distance(*f.Origin, geo.Point{Latitude: c.Place.Latitude, Longitude: c.Place.Longitude})
			if d > radius {
				continue
			}
			r.DistanceKM = &d
		}
		results = append(results, r)
	}

	switch f.SortBy {
	case SortAvailability:
		sort.SliceStable(results, func(i, j int) bool {
			return len(results[i].Medicines) > len(results[j].Medicines)
		})
	default:
		// Distance sort; without an origin the order falls back to
		// pharmacy name so output stays deterministic.
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].DistanceKM == nil || results[j].DistanceKM == nil {
				return results[i].Place.Name < results[j].Place.Name
			}
			return *results[i].DistanceKM < *results[j].DistanceKM
		})
	}
	return results
}

// MatchesTerm reports whether a medicine name matches the search term,
// case-insensitive substring. An empty term matches everything.
func MatchesTerm(name, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}

// hasCoordinates treats the zero coordinate as unset; registration
// never produces it for a real pharmacy.
func hasCoordinates(p Place) bool {
	return p.Latitude != 0 || p.Longitude != 0
}
