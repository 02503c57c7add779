package geo

import (
	"math"
	"testing"
)

func TestDistance_SamePoint(t *testing.T) {
	p := Point{Latitude: -1.9536, Longitude: 30.0606}
	if d := Distance(p, p); d != 0 {
		t.Errorf("expected zero distance to self, got %v", d)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Point{Latitude: -1.9536, Longitude: 30.0606}
	b := Point{Latitude: -2.5967, Longitude: 29.7389}

	ab := Distance(a, b)
	ba := Distance(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance is not symmetric: %v vs %v", ab, ba)
	}
}

func TestDistance_KnownValue(t *testing.T) {
	// Kigali to Huye is roughly 80 km as the crow flies.
	kigali := Point{Latitude: -1.9536, Longitude: 30.0606}
	huye := Point{Latitude: -2.5967, Longitude: 29.7389}

	d := Distance(kigali, huye)
	if d < 70 || d > 90 {
		t.Errorf("expected roughly 80 km, got %v", d)
	}
}

func TestDistance_Positive(t *testing.T) {
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 0.001, Longitude: 0.001}
	if d := Distance(a, b); d <= 0 {
		t.Errorf("expected positive distance between distinct points, got %v", d)
	}
}

func TestTileLayers(t *testing.T) {
	layers := TileLayers()
	if len(layers) != 3 {
		t.Fatalf("expected 3 tile layers, got %d", len(layers))
	}
	if layers[0].ID != "standard" {
		t.Errorf("expected standard layer first, got %s", layers[0].ID)
	}

	seen := map[string]bool{}
	for _, l := range layers {
		if l.URLTemplate == "" {
			t.Errorf("layer %s has no URL template", l.ID)
		}
		if l.MaxZoom <= 0 {
			t.Errorf("layer %s has no max zoom", l.ID)
		}
		if seen[l.ID] {
			t.Errorf("duplicate layer id %s", l.ID)
		}
		seen[l.ID] = true
	}
}
