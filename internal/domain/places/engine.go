// Package places implements the idle-triggered nearby-search engine: zoom
// gating, per-(bounds,category,minZoom) freshness caching, per-category
// overlay lifecycles, and lazy detail popups. The bounds+category-keyed
// cache trades result freshness for API-call economy, since the backend is
// metered.
package places

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/cartodesk/cartodesk-api/internal/domain/provider"
	"github.com/cartodesk/cartodesk-api/internal/types"
	"github.com/cartodesk/cartodesk-api/pkg/observability"
)

// FreshnessWindow is how long a fetch for one (bounds, category, minZoom)
// key suppresses refetching.
const FreshnessWindow = 10 * time.Minute

// searchKey identifies one cached fetch. The struct (not ad-hoc string
// concatenation) keeps categories from colliding across similar bounds.
type searchKey struct {
	bounds   string
	category types.PlaceCategory
	minZoom  int
}

func (k searchKey) String() string {
	return fmt.Sprintf("%s|%s|%d", k.bounds, k.category, k.minZoom)
}

// Engine runs the places search on map-idle events. Overlay handles are
// private to the owning surface controller; the engine is never shared
// between surfaces.
type Engine struct {
	client    Client
	logger    *slog.Logger
	freshness *cache.Cache

	mu       sync.Mutex
	overlays map[types.PlaceCategory][]provider.OverlayHandle
	epoch    int
}

// EngineOption tunes engine construction.
type EngineOption func(*Engine)

// WithFreshnessWindow overrides the fetch suppression window.
func WithFreshnessWindow(d time.Duration) EngineOption {
	return func(e *Engine) { e.freshness = cache.New(d, 2*d) }
}

// NewEngine builds an engine around the given search backend.
func NewEngine(client Client, logger *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		client:    client,
		logger:    logger,
		freshness: cache.New(FreshnessWindow, 2*FreshnessWindow),
		overlays:  make(map[types.PlaceCategory][]provider.OverlayHandle),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Refresh runs one idle tick against the renderer. Categories are processed
// independently: a failure in one never blocks another. Failures leave the
// prior overlays and cache timestamp untouched so the next idle retries.
func (e *Engine) Refresh(ctx context.Context, r provider.Renderer, toggles types.PlacesToggles, cfg types.PlacesConfig) {
	tracer := otel.Tracer("cartodesk/places")
	ctx, span := tracer.Start(ctx, "Engine.Refresh")
	defer span.End()

	zoom := r.Zoom()
	span.SetAttributes(attribute.Int("map.zoom", zoom), attribute.Int("places.min_zoom", cfg.MinZoom))

	if zoom < cfg.MinZoom {
		// Below the gate: hide, don't destroy, so zooming back in
		// re-shows without refetching.
		for _, category := range types.PlaceCategories {
			e.hideCategory(category)
		}
		span.SetStatus(codes.Ok, "below zoom gate")
		return
	}

	bounds, ok := r.Bounds()
	if !ok {
		return
	}
	boundsKey := bounds.Key()

	e.mu.Lock()
	epoch := e.epoch
	e.mu.Unlock()

	for _, category := range types.PlaceCategories {
		if !toggles[category] {
			e.hideCategory(category)
			continue
		}

		key := searchKey{bounds: boundsKey, category: category, minZoom: cfg.MinZoom}
		if _, fresh := e.freshness.Get(key.String()); fresh {
			e.showCategory(category)
			observability.PlacesCacheHits.WithLabelValues(string(category)).Inc()
			continue
		}

		observability.PlacesSearchTotal.WithLabelValues(string(category)).Inc()
		results, err := e.client.NearbySearch(ctx, bounds, category.BackendType())
		if err != nil {
			observability.PlacesSearchErrors.WithLabelValues(string(category)).Inc()
			e.logger.ErrorContext(ctx, "places search failed", "category", category, "error", err)
			continue
		}

		if !e.install(r, category, results, cfg.MaxResults, epoch) {
			continue
		}
		e.freshness.Set(key.String(), time.Now(), cache.DefaultExpiration)
	}
	span.SetStatus(codes.Ok, "refreshed")
}

// install tears down the category's previous overlay set and renders the
// new one. It reports false when the response is stale (the engine was torn
// down while the search was in flight), in which case nothing is applied.
func (e *Engine) install(r provider.Renderer, category types.PlaceCategory, results []types.PlaceResult, maxResults int, epoch int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if epoch != e.epoch {
		return false
	}

	for _, h := range e.overlays[category] {
		h.Remove()
	}

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}

	handles := make([]provider.OverlayHandle, 0, len(results))
	for _, res := range results {
		res := res
		h := r.AddOverlay(provider.OverlaySpec{
			Position: res.Geometry.Location,
			IconURL:  fmt.Sprintf("/icons/%s.svg", category),
			IconSize: 20,
			Title:    res.Name,
		})
		handle := h
		h.OnClick(func() {
			e.openDetails(r, handle, res.PlaceID)
		})
		handles = append(handles, h)
	}
	e.overlays[category] = handles
	return true
}

// openDetails lazily fetches the place details and shows them in the shared
// popup bound to the clicked overlay.
func (e *Engine) openDetails(r provider.Renderer, anchor provider.OverlayHandle, placeID string) {
	if placeID == "" {
		return
	}
	details, err := e.client.Details(context.Background(), placeID)
	if err != nil {
		e.logger.Error("place details failed", "place_id", placeID, "error", err)
		return
	}

	content := fmt.Sprintf("<div class=\"place-popup\"><strong>%s</strong><br>%s",
		html.EscapeString(details.Name), html.EscapeString(details.FormattedAddress))
	if details.Rating != nil {
		content += fmt.Sprintf("<br><span>⭐ %.1f</span>", *details.Rating)
	}
	content += "</div>"

	r.ShowPopup(anchor, content)
}

func (e *Engine) hideCategory(category types.PlaceCategory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, h := range e.overlays[category] {
		h.Hide()
	}
}

func (e *Engine) showCategory(category types.PlaceCategory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, h := range e.overlays[category] {
		h.Show()
	}
}

// Teardown removes every overlay and bumps the epoch so that in-flight
// responses are dropped instead of resurrecting overlays on a dead surface.
// The freshness cache is flushed with the overlays: a fresh hit re-shows
// the cached set, and after teardown there is no set left to show.
func (e *Engine) Teardown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.epoch++
	e.freshness.Flush()
	for category, handles := range e.overlays {
		for _, h := range handles {
			h.Remove()
		}
		delete(e.overlays, category)
	}
}
