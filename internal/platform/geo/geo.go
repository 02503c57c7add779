// Package geo provides the distance math and map tile catalog used by the
// pharmacy locator.
package geo

import "math"

// earthRadiusKm is the mean radius of the Earth.
const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the great-circle distance between two points in
// kilometers, using the haversine formula.
func Distance(a, b Point) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLng := radians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*sinLng*sinLng

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// TileLayer describes a raster tile source the map client can render.
type TileLayer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URLTemplate string `json:"url_template"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"max_zoom"`
}

// TileLayers returns the tile sources offered to the locator map, in
// display order. The standard layer is the default.
func TileLayers() []TileLayer {
	return []TileLayer{
		{
			ID:          "standard",
			Name:        "Standard",
			URLTemplate: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: "&copy; OpenStreetMap contributors",
			MaxZoom:     19,
		},
		{
			ID:          "satellite",
			Name:        "Satellite",
			URLTemplate: "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
			Attribution: "&copy; Esri",
			MaxZoom:     19,
		},
		{
			ID:          "terrain",
			Name:        "Terrain",
			URLTemplate: "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
			Attribution: "&copy; OpenTopoMap contributors",
			MaxZoom:     17,
		},
	}
}
