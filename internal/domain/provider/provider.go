// Package provider defines the seam between the map-state synchronization
// engine and any concrete mapping backend: the Provider contract, the opaque
// Renderer capability, and the Manager that guarantees at most one live
// provider instance per surface.
package provider

import (
	"context"

	"github.com/cartodesk/cartodesk-api/internal/types"
)

// Kind is the closed enumeration of mapping backends.
type Kind string

const (
	KindGoogle Kind = "google"
	KindMapbox Kind = "mapbox"
)

// Valid reports whether k names a known backend, implemented or not.
func (k Kind) Valid() bool {
	return k == KindGoogle || k == KindMapbox
}

// Options configures a provider instance at init time.
type Options struct {
	// Interactive allows pan/zoom/scroll gestures. Chrome controls stay
	// hidden and native POI click targets stay disabled either way.
	Interactive bool
}

// Provider is the polymorphic contract any mapping backend must satisfy.
// Init must complete before any other method is called; a destroyed
// instance is never reused, callers construct a new one.
type Provider interface {
	Init(ctx context.Context, mount string, center types.LatLng, zoom int, opts Options) error
	SetCenter(center types.LatLng)
	SetZoom(zoom int)
	Destroy()
}

// RendererAccess is implemented by providers that expose their native
// renderer for overlay work. Callers check for it with a type assertion at
// the manager boundary instead of probing fields at runtime.
type RendererAccess interface {
	Renderer() (Renderer, bool)
}
