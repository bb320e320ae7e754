// Package geolocation resolves the user's initial position through a
// platform location capability, with a timeout and a fixed fallback.
package geolocation

import (
	"context"
	"log/slog"
	"time"

	"github.com/cartodesk/cartodesk-api/internal/types"
	"github.com/cartodesk/cartodesk-api/pkg/observability"
)

// Fallback is the coordinate returned whenever resolution is unavailable,
// fails or times out (San Francisco).
var Fallback = types.LatLng{Lat: 37.7749, Lng: -122.4194}

// Options tune a single resolution attempt.
type Options struct {
	Timeout      time.Duration
	HighAccuracy bool
	MaximumAge   time.Duration
}

// DefaultOptions returns the resolution defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:      10 * time.Second,
		HighAccuracy: true,
		MaximumAge:   5 * time.Minute,
	}
}

// Locator is the platform location capability, consumed as a single
// getCurrentPosition-style call.
type Locator interface {
	CurrentPosition(ctx context.Context, opts Options) (types.LatLng, error)
}

// Resolver wraps a Locator so that resolution never fails and never blocks
// past the configured timeout.
type Resolver struct {
	locator Locator
	logger  *slog.Logger
}

// NewResolver returns a resolver around the given capability. A nil locator
// models a platform without geolocation support.
func NewResolver(locator Locator, logger *slog.Logger) *Resolver {
	return &Resolver{locator: locator, logger: logger}
}

// Resolve returns the current position, or Fallback when the capability is
// unavailable, errors, or does not answer within opts.Timeout. It never
// returns an error.
func (r *Resolver) Resolve(ctx context.Context, opts Options) types.LatLng {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}

	if r.locator == nil {
		r.logger.WarnContext(ctx, "geolocation not available, using fallback location")
		observability.GeolocationFallbacks.Inc()
		return Fallback
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	type result struct {
		pos types.LatLng
		err error
	}
	ch := make(chan result, 1)
	go func() {
		pos, err := r.locator.CurrentPosition(ctx, opts)
		ch <- result{pos: pos, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			r.logger.WarnContext(ctx, "geolocation failed, using fallback location", "error", res.err)
			observability.GeolocationFallbacks.Inc()
			return Fallback
		}
		return res.pos
	case <-ctx.Done():
		r.logger.WarnContext(ctx, "geolocation timed out, using fallback location", "timeout", opts.Timeout)
		observability.GeolocationFallbacks.Inc()
		return Fallback
	}
}
