package locator

import (
	"github.com/google/uuid"

	"github.com/medibot/medibot/internal/platform/geo"
)

// Sort orders for search results.
const (
	SortDistance     = "distance"
	SortAvailability = "availability"
)

// DefaultRadiusKM is used when the client sends no radius.
const DefaultRadiusKM = 50

// Filters narrow a medicine search across approved pharmacies.
type Filters struct {
	Term     string
	MinStock int
	RadiusKM float64
	SortBy   string
	Origin   *geo.Point
}

// MatchedMedicine is the public projection of a catalog row. Prices
// and stock are public; internal ids stay so the client can link to
// details.
type MatchedMedicine struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price float64   `json:"price"`
	Stock int       `json:"stock_quantity"`
}

// Place is an approved pharmacy as shown on the public map.
type Place struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Phone     *string   `json:"phone,omitempty"`
}

// Candidate couples a place with its medicines that matched the term
// and stock filter. The repository builds these; the search core
// ranks them.
type Candidate struct {
	Place     Place
	Medicines []MatchedMedicine
}

// Result is one ranked search hit. DistanceKM is nil when the client
// gave no location or the pharmacy has none.
type Result struct {
	Place      Place             `json:"pharmacy"`
	DistanceKM *float64          `json:"distance_km,omitempty"`
	Medicines  []MatchedMedicine `json:"medicines"`
}

// TilesResponse feeds the map widget: the selectable base layers and
// the center to fall back to when geolocation is unavailable.
type TilesResponse struct {
	Layers        []geo.TileLayer `json:"layers"`
	DefaultCenter geo.Point       `json:"default_center"`
}
