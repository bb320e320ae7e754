package types

// MarkerLayer buckets admin-placed markers into toggleable groups.
type MarkerLayer string

const (
	LayerTerrain MarkerLayer = "terrain"
	LayerHotel   MarkerLayer = "hotel"
	LayerAirport MarkerLayer = "airport"
)

// MarkerLayers lists every known layer, in display order.
var MarkerLayers = []MarkerLayer{LayerTerrain, LayerHotel, LayerAirport}

// Valid reports whether l is one of the known layers.
func (l MarkerLayer) Valid() bool {
	switch l {
	case LayerTerrain, LayerHotel, LayerAirport:
		return true
	}
	return false
}

// Marker is an admin-placed pin. Markers are created once, never mutated,
// and removable by id. Icon is a filename from the icon catalog; markers
// carry no text label.
type Marker struct {
	ID    string      `json:"id"`
	Lat   float64     `json:"lat"`
	Lng   float64     `json:"lng"`
	Icon  string      `json:"icon"`
	Layer MarkerLayer `json:"layer"`
}

// LayerVisibility maps a marker layer to whether the user surface renders it.
// The admin surface ignores it and always renders every marker.
type LayerVisibility map[MarkerLayer]bool

// DefaultLayerVisibility returns the initial mapping: all layers visible.
func DefaultLayerVisibility() LayerVisibility {
	return LayerVisibility{LayerTerrain: true, LayerHotel: true, LayerAirport: true}
}

// Clone returns an independent copy.
func (v LayerVisibility) Clone() LayerVisibility {
	out := make(LayerVisibility, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
