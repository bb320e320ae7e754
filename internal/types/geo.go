package types

import (
	"fmt"
	"math"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a map viewport: south-west and north-east corners.
type Bounds struct {
	SouthWest LatLng `json:"south_west"`
	NorthEast LatLng `json:"north_east"`
}

// Key returns the canonical serialization of the bounds, rounded to six
// decimals so that equal viewports always produce equal keys.
func (b Bounds) Key() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f",
		round6(b.SouthWest.Lat), round6(b.SouthWest.Lng),
		round6(b.NorthEast.Lat), round6(b.NorthEast.Lng))
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() LatLng {
	return LatLng{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}

// RadiusMeters returns the distance from the center to a corner, i.e. the
// radius of the circle circumscribing the viewport.
func (b Bounds) RadiusMeters() float64 {
	return haversineMeters(b.Center(), b.NorthEast)
}

// Camera holds the map position the store synchronizes to every surface.
type Camera struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

const earthRadiusMeters = 6371000

func haversineMeters(a, b LatLng) float64 {
	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
