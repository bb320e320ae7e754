package provider

import (
	"context"

	"github.com/cartodesk/cartodesk-api/internal/types"
)

// EventType identifies a map-level interaction event.
type EventType string

const (
	// EventIdle fires after the user stops panning or zooming.
	EventIdle EventType = "idle"
	// EventClick fires on a primary click on the map surface.
	EventClick EventType = "click"
	// EventContextMenu fires on a secondary click / context-menu gesture.
	EventContextMenu EventType = "contextmenu"
)

// Event carries the payload of a map interaction.
type Event struct {
	Position types.LatLng
}

// MapOptions are the renderer settings this system toggles at runtime.
type MapOptions struct {
	Draggable        bool
	Scrollwheel      bool
	DisableDefaultUI bool
	ClickableIcons   bool
	HideNativePOI    bool
}

// OverlaySpec describes a marker overlay to render.
type OverlaySpec struct {
	Position      types.LatLng
	IconURL       string
	IconSize      int
	Title         string
	DropAnimation bool
}

// OverlayHandle is a live overlay on the map. Hide preserves the overlay for
// a later Show without re-creating it; Remove releases it for good.
type OverlayHandle interface {
	Show()
	Hide()
	Remove()
	OnClick(fn func())
}

// Renderer is the opaque vendor map handle. Everything outside this package
// and the surface controllers must only ever observe store state and call
// Provider methods, never touch the vendor SDK directly.
type Renderer interface {
	SetCenter(center types.LatLng)
	SetZoom(zoom int)
	SetOptions(opts MapOptions)
	Zoom() int
	// Bounds reports the current viewport; ok is false while the renderer
	// has not produced one yet.
	Bounds() (bounds types.Bounds, ok bool)
	AddOverlay(spec OverlaySpec) OverlayHandle
	On(event EventType, fn func(Event))
	// ShowPopup opens the shared popup anchored to the given overlay,
	// replacing any content already shown.
	ShowPopup(anchor OverlayHandle, html string)
	ClosePopup()
	Release()
}

// RendererConfig is the construction-time renderer state.
type RendererConfig struct {
	Center  types.LatLng
	Zoom    int
	Options MapOptions
}

// Backend loads the vendor SDK and constructs renderers bound to a mount
// point. Construction failures (network, auth) surface as errors.
type Backend interface {
	NewRenderer(ctx context.Context, mount string, cfg RendererConfig) (Renderer, error)
}
