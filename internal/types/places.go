package types

// PlaceCategory is an overlay category the places engine can query for.
type PlaceCategory string

const (
	PlaceHotel      PlaceCategory = "hotel"
	PlaceRestaurant PlaceCategory = "restaurant"
	PlaceStadium    PlaceCategory = "stadium"
)

// PlaceCategories lists every known category, in processing order.
var PlaceCategories = []PlaceCategory{PlaceHotel, PlaceRestaurant, PlaceStadium}

// BackendType maps a category to the vendor nearby-search type.
func (c PlaceCategory) BackendType() string {
	switch c {
	case PlaceHotel:
		return "lodging"
	case PlaceRestaurant:
		return "restaurant"
	case PlaceStadium:
		return "stadium"
	}
	return string(c)
}

// PlacesToggles maps a category to whether the engine actively queries and
// renders it. Independent of LayerVisibility.
type PlacesToggles map[PlaceCategory]bool

// DefaultPlacesToggles returns the initial mapping: all categories off.
func DefaultPlacesToggles() PlacesToggles {
	return PlacesToggles{PlaceHotel: false, PlaceRestaurant: false, PlaceStadium: false}
}

// Clone returns an independent copy.
func (t PlacesToggles) Clone() PlacesToggles {
	out := make(PlacesToggles, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// PlacesConfig bounds the places engine: result truncation and zoom gating.
type PlacesConfig struct {
	MaxResults int `json:"max_results"`
	MinZoom    int `json:"min_zoom"`
}

// DefaultPlacesConfig returns the user-adjustable defaults.
func DefaultPlacesConfig() PlacesConfig {
	return PlacesConfig{MaxResults: 20, MinZoom: 14}
}

// Place is one nearby-search result.
type Place struct {
	PlaceID  string        `json:"place_id"`
	Name     string        `json:"name"`
	Location LatLng        `json:"location"`
	Category PlaceCategory `json:"category"`
}

// PlaceDetails is the lazily-fetched detail payload shown in the popup.
type PlaceDetails struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           *float64 `json:"rating,omitempty"`
}

// NearbySearchResponse mirrors the vendor Places nearby-search REST payload,
// trimmed to the fields this system reads.
type NearbySearchResponse struct {
	Results []PlaceResult `json:"results"`
	Status  string        `json:"status"`
}

// PlaceResult is one raw result row from the vendor API.
type PlaceResult struct {
	PlaceID  string        `json:"place_id"`
	Name     string        `json:"name"`
	Geometry PlaceGeometry `json:"geometry"`
	Rating   *float64      `json:"rating,omitempty"`
	Vicinity *string       `json:"vicinity,omitempty"`
	Types    []string      `json:"types,omitempty"`
}

type PlaceGeometry struct {
	Location LatLng `json:"location"`
}

// PlaceDetailsResponse mirrors the vendor place-details REST payload.
type PlaceDetailsResponse struct {
	Result PlaceDetailsResult `json:"result"`
	Status string             `json:"status"`
}

type PlaceDetailsResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           *float64 `json:"rating,omitempty"`
}
