package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundsKey(t *testing.T) {
	a := Bounds{
		SouthWest: LatLng{Lat: 37.70000049, Lng: -122.50000049},
		NorthEast: LatLng{Lat: 37.80000049, Lng: -122.40000049},
	}
	b := Bounds{
		SouthWest: LatLng{Lat: 37.7, Lng: -122.5},
		NorthEast: LatLng{Lat: 37.8, Lng: -122.4},
	}

	// Sub-micro-degree jitter must not split the cache key
	assert.Equal(t, b.Key(), a.Key())
	assert.Equal(t, "37.700000,-122.500000,37.800000,-122.400000", b.Key())

	c := Bounds{
		SouthWest: LatLng{Lat: 37.700001, Lng: -122.5},
		NorthEast: LatLng{Lat: 37.8, Lng: -122.4},
	}
	assert.NotEqual(t, b.Key(), c.Key())
}

func TestBoundsCenter(t *testing.T) {
	b := Bounds{
		SouthWest: LatLng{Lat: 10, Lng: 20},
		NorthEast: LatLng{Lat: 20, Lng: 40},
	}
	assert.Equal(t, LatLng{Lat: 15, Lng: 30}, b.Center())
}

func TestBoundsRadiusMeters(t *testing.T) {
	// Roughly a city viewport around San Francisco
	b := Bounds{
		SouthWest: LatLng{Lat: 37.70, Lng: -122.52},
		NorthEast: LatLng{Lat: 37.83, Lng: -122.35},
	}
	r := b.RadiusMeters()
	assert.Greater(t, r, 5000.0)
	assert.Less(t, r, 20000.0)

	// Degenerate viewport has zero radius
	p := Bounds{
		SouthWest: LatLng{Lat: 37.7, Lng: -122.4},
		NorthEast: LatLng{Lat: 37.7, Lng: -122.4},
	}
	assert.Zero(t, p.RadiusMeters())
}

func TestPlaceCategoryBackendType(t *testing.T) {
	assert.Equal(t, "lodging", PlaceHotel.BackendType())
	assert.Equal(t, "restaurant", PlaceRestaurant.BackendType())
	assert.Equal(t, "stadium", PlaceStadium.BackendType())
}

func TestDefaults(t *testing.T) {
	layers := DefaultLayerVisibility()
	for _, l := range MarkerLayers {
		assert.True(t, layers[l], "layer %s should start visible", l)
	}

	toggles := DefaultPlacesToggles()
	for _, c := range PlaceCategories {
		assert.False(t, toggles[c], "category %s should start off", c)
	}

	cfg := DefaultPlacesConfig()
	assert.Equal(t, 20, cfg.MaxResults)
	assert.Equal(t, 14, cfg.MinZoom)
}

func TestMarkerLayerValid(t *testing.T) {
	assert.True(t, LayerTerrain.Valid())
	assert.True(t, LayerHotel.Valid())
	assert.True(t, LayerAirport.Valid())
	assert.False(t, MarkerLayer("ocean").Valid())
	assert.False(t, MarkerLayer("").Valid())
}

func TestCloneIndependence(t *testing.T) {
	layers := DefaultLayerVisibility()
	clone := layers.Clone()
	clone[LayerTerrain] = false
	assert.True(t, layers[LayerTerrain])

	toggles := DefaultPlacesToggles()
	tc := toggles.Clone()
	tc[PlaceHotel] = true
	assert.False(t, toggles[PlaceHotel])
}
