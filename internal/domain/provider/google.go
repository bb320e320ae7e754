package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cartodesk/cartodesk-api/internal/types"
)

var (
	_ Provider       = (*GoogleProvider)(nil)
	_ RendererAccess = (*GoogleProvider)(nil)
)

// GoogleProvider renders through the Google Maps backend.
type GoogleProvider struct {
	backend   Backend
	logger    *slog.Logger
	renderer  Renderer
	destroyed bool
}

// NewGoogleProvider returns an uninitialized provider bound to the backend.
func NewGoogleProvider(backend Backend, logger *slog.Logger) *GoogleProvider {
	return &GoogleProvider{backend: backend, logger: logger}
}

// Init constructs the underlying renderer. Interactive=false locks the map
// (no gestures); both modes hide chrome and native POI click targets.
func (p *GoogleProvider) Init(ctx context.Context, mount string, center types.LatLng, zoom int, opts Options) error {
	if p.destroyed {
		return fmt.Errorf("google provider: instance already destroyed")
	}

	mapOpts := MapOptions{
		Draggable:        opts.Interactive,
		Scrollwheel:      opts.Interactive,
		DisableDefaultUI: true,
		ClickableIcons:   false,
		HideNativePOI:    true,
	}

	renderer, err := p.backend.NewRenderer(ctx, mount, RendererConfig{
		Center:  center,
		Zoom:    zoom,
		Options: mapOpts,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize google maps: %w", err)
	}

	p.renderer = renderer
	p.logger.InfoContext(ctx, "google maps initialized", "mount", mount, "interactive", opts.Interactive)
	return nil
}

func (p *GoogleProvider) SetCenter(center types.LatLng) {
	if p.renderer != nil {
		p.renderer.SetCenter(center)
	}
}

func (p *GoogleProvider) SetZoom(zoom int) {
	if p.renderer != nil {
		p.renderer.SetZoom(zoom)
	}
}

// Destroy releases the renderer and leaves the instance unusable.
func (p *GoogleProvider) Destroy() {
	if p.renderer != nil {
		p.renderer.Release()
		p.renderer = nil
	}
	p.destroyed = true
}

// Renderer exposes the native map handle for overlay work.
func (p *GoogleProvider) Renderer() (Renderer, bool) {
	return p.renderer, p.renderer != nil
}
