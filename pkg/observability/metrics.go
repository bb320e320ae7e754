// Package observability holds the Prometheus instruments exported on
// /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlacesSearchTotal counts nearby-search calls actually issued to the
	// places backend, per category. Cache hits do not increment it.
	PlacesSearchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cartodesk_places_search_requests_total",
		Help: "Nearby-search requests issued to the places backend.",
	}, []string{"category"})

	// PlacesSearchErrors counts failed nearby-search calls per category.
	PlacesSearchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cartodesk_places_search_errors_total",
		Help: "Nearby-search requests that returned a non-OK status.",
	}, []string{"category"})

	// PlacesCacheHits counts idle ticks served from the freshness cache.
	PlacesCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cartodesk_places_cache_hits_total",
		Help: "Nearby-search refreshes served from cached overlays.",
	}, []string{"category"})

	// GeolocationFallbacks counts resolutions that fell back to the fixed
	// default coordinate.
	GeolocationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cartodesk_geolocation_fallbacks_total",
		Help: "Geolocation resolutions answered with the fallback coordinate.",
	})

	// DistanceRequests counts distance calculations, split by cache outcome.
	DistanceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cartodesk_distance_requests_total",
		Help: "Distance calculations, labelled by cache outcome.",
	}, []string{"outcome"})
)
