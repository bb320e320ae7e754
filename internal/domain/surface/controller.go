// Package surface binds one mount point to one provider manager and keeps
// the rendered map consistent with the map state store. Two variants exist:
// the admin surface (interactive, right-click marker creation, places
// search, temp search pin) and the user surface (locked, left-click marker
// creation, layer-filtered markers).
package surface

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cartodesk/cartodesk-api/internal/domain/mapstate"
	"github.com/cartodesk/cartodesk-api/internal/domain/places"
	"github.com/cartodesk/cartodesk-api/internal/domain/provider"
	"github.com/cartodesk/cartodesk-api/internal/types"
)

// Variant selects the surface behavior.
type Variant string

const (
	VariantAdmin Variant = "admin"
	VariantUser  Variant = "user"
)

// Phase is the controller lifecycle state.
type Phase int32

const (
	PhaseUninitialized Phase = iota
	PhaseInitializing
	PhaseReady
	PhaseDestroyed
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitializing:
		return "initializing"
	case PhaseReady:
		return "ready"
	case PhaseDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// MarkerRequestFunc receives the coordinate the user picked for a new
// marker (the marker-creation modal trigger).
type MarkerRequestFunc func(lat, lng float64)

// Controller reconciles store state onto one live provider instance.
// Overlay handles are private to the controller; admin and user surfaces
// run concurrently without coordination.
type Controller struct {
	variant         Variant
	mount           string
	store           *mapstate.Store
	manager         *provider.Manager
	engine          *places.Engine // admin only
	onMarkerRequest MarkerRequestFunc
	logger          *slog.Logger

	mu            sync.Mutex
	phase         Phase
	didInit       bool
	boundProvider provider.Kind
	last          mapstate.Snapshot
	markerHandles []provider.OverlayHandle
	tempHandle    provider.OverlayHandle
	unsubscribe   func()
}

// NewAdmin builds the back-office surface controller. The places engine is
// owned by the admin surface and torn down with it.
func NewAdmin(store *mapstate.Store, manager *provider.Manager, engine *places.Engine, mount string, onMarkerRequest MarkerRequestFunc, logger *slog.Logger) *Controller {
	return &Controller{
		variant:         VariantAdmin,
		mount:           mount,
		store:           store,
		manager:         manager,
		engine:          engine,
		onMarkerRequest: onMarkerRequest,
		logger:          logger,
	}
}

// NewUser builds the front-office surface controller.
func NewUser(store *mapstate.Store, manager *provider.Manager, mount string, onMarkerRequest MarkerRequestFunc, logger *slog.Logger) *Controller {
	return &Controller{
		variant:         VariantUser,
		mount:           mount,
		store:           store,
		manager:         manager,
		onMarkerRequest: onMarkerRequest,
		logger:          logger,
	}
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Mount initializes the surface: resolve location, switch the provider in,
// attach listeners, reconcile, then subscribe to the store and reconcile
// once more against the current state. Re-entrant
// calls while initializing or ready are no-ops. A failed init leaves the
// controller uninitialized so a later remount retries.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.didInit || c.phase == PhaseInitializing {
		c.mu.Unlock()
		return nil
	}
	c.phase = PhaseInitializing
	c.mu.Unlock()

	c.store.InitializeLocation(ctx)
	snap := c.store.Snapshot()

	opts := provider.Options{Interactive: c.variant == VariantAdmin}
	if err := c.manager.Switch(ctx, snap.Provider, c.mount, snap.Center, snap.Zoom, opts); err != nil {
		c.logger.ErrorContext(ctx, "failed to initialize map surface",
			"variant", c.variant, "mount", c.mount, "error", err)
		c.mu.Lock()
		c.phase = PhaseUninitialized
		c.mu.Unlock()
		return fmt.Errorf("mount %s surface: %w", c.variant, err)
	}

	c.mu.Lock()
	c.didInit = true
	c.phase = PhaseReady
	c.boundProvider = snap.Provider
	c.last = snap
	c.mu.Unlock()

	c.attachListeners()
	c.syncMarkers(snap)
	if c.variant == VariantAdmin {
		c.syncTempMarker(snap)
	}
	c.applyPOIStyle(snap)

	cancel := c.store.Subscribe(c.onStateChange)
	c.mu.Lock()
	c.unsubscribe = cancel
	c.mu.Unlock()

	// Mutations that landed between the mount-time snapshot and the
	// subscription never notified anyone. Reconcile once against the
	// current state so they are not lost until the next mutation.
	c.onStateChange(c.store.Snapshot())

	c.logger.InfoContext(ctx, "map surface initialized", "variant", c.variant, "mount", c.mount)
	return nil
}

// Unmount tears the surface down: clears rendered overlays, destroys the
// provider manager and resets tracking so a future remount starts clean.
func (c *Controller) Unmount() {
	c.mu.Lock()
	if c.phase == PhaseDestroyed {
		c.mu.Unlock()
		return
	}
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	handles := c.markerHandles
	c.markerHandles = nil
	temp := c.tempHandle
	c.tempHandle = nil
	c.didInit = false
	c.boundProvider = ""
	c.phase = PhaseDestroyed
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	for _, h := range handles {
		h.Remove()
	}
	if temp != nil {
		temp.Remove()
	}
	if c.engine != nil {
		c.engine.Teardown()
	}
	if r, ok := c.renderer(); ok {
		r.ClosePopup()
	}
	c.manager.Destroy()
}

// renderer returns the live provider's native handle, when it declares one.
func (c *Controller) renderer() (provider.Renderer, bool) {
	p, ok := c.manager.Current()
	if !ok {
		return nil, false
	}
	access, ok := p.(provider.RendererAccess)
	if !ok {
		return nil, false
	}
	return access.Renderer()
}

func (c *Controller) attachListeners() {
	r, ok := c.renderer()
	if !ok {
		return
	}

	request := func(ev provider.Event) {
		if c.onMarkerRequest != nil {
			c.onMarkerRequest(ev.Position.Lat, ev.Position.Lng)
		}
	}

	switch c.variant {
	case VariantAdmin:
		r.On(provider.EventContextMenu, request)
		r.On(provider.EventIdle, func(provider.Event) { c.handleIdle() })
	case VariantUser:
		r.On(provider.EventClick, request)
	}
}

// handleIdle runs the places engine against the current viewport. Admin
// surface only; readiness-gated like every reactive path.
func (c *Controller) handleIdle() {
	c.mu.Lock()
	ready := c.didInit && c.phase == PhaseReady
	c.mu.Unlock()
	if !ready || c.engine == nil {
		return
	}

	r, ok := c.renderer()
	if !ok {
		return
	}
	snap := c.store.Snapshot()
	c.engine.Refresh(context.Background(), r, snap.PlacesLayers, snap.PlacesConfig)
}

// onStateChange reconciles a store snapshot onto the provider. Camera sync
// is one-directional (store to provider); dragging the map never writes
// back.
func (c *Controller) onStateChange(snap mapstate.Snapshot) {
	c.mu.Lock()
	if !c.didInit || c.phase != PhaseReady {
		c.mu.Unlock()
		return
	}
	prev := c.last
	c.last = snap
	swap := snap.Provider != c.boundProvider
	if swap {
		// Claim the target kind up front so a rapid double-trigger for
		// the same kind coalesces instead of issuing two switches.
		c.boundProvider = snap.Provider
	}
	c.mu.Unlock()

	if swap {
		c.swapProvider(snap)
		return
	}

	current, ok := c.manager.Current()
	if !ok {
		return
	}
	if snap.Center != prev.Center {
		current.SetCenter(snap.Center)
	}
	if snap.Zoom != prev.Zoom {
		current.SetZoom(snap.Zoom)
	}

	markersDirty := !markersEqual(prev.Markers, snap.Markers)
	if c.variant == VariantUser && !boolMapEqual(prev.Layers, snap.Layers) {
		markersDirty = true
		// Beyond the marker filter, layer toggles have no per-layer
		// overlay control yet.
		c.logger.Info("layer visibility changed", "layers", snap.Layers)
	}
	if markersDirty {
		c.syncMarkers(snap)
	}

	if c.variant == VariantAdmin {
		if !tempEqual(prev.TempMarker, snap.TempMarker) {
			c.syncTempMarker(snap)
		}
		if !togglesEqual(prev.PlacesLayers, snap.PlacesLayers) {
			c.handleIdle()
		}
		if prev.ShowNativePOI != snap.ShowNativePOI {
			c.applyPOIStyle(snap)
		}
	}
}

// swapProvider switches backends in place, preserving camera and marker
// continuity without a full remount.
func (c *Controller) swapProvider(snap mapstate.Snapshot) {
	ctx := context.Background()
	opts := provider.Options{Interactive: c.variant == VariantAdmin}
	if err := c.manager.Switch(ctx, snap.Provider, c.mount, snap.Center, snap.Zoom, opts); err != nil {
		c.logger.ErrorContext(ctx, "failed to switch map provider",
			"variant", c.variant, "provider", snap.Provider, "error", err)
		c.mu.Lock()
		c.boundProvider = ""
		c.mu.Unlock()
		return
	}

	// Fresh renderer: listeners and overlays do not carry over.
	c.mu.Lock()
	c.markerHandles = nil
	c.tempHandle = nil
	c.mu.Unlock()
	if c.engine != nil {
		c.engine.Teardown()
	}

	c.attachListeners()
	c.syncMarkers(snap)
	if c.variant == VariantAdmin {
		c.syncTempMarker(snap)
	}
	c.applyPOIStyle(snap)
	c.logger.Info("map surface switched provider", "variant", c.variant, "provider", snap.Provider)
}

// syncMarkers clears every rendered marker overlay and re-renders the ones
// passing the variant's visibility filter. Admin renders all markers; user
// renders only markers on visible layers. Markers carry no labels.
func (c *Controller) syncMarkers(snap mapstate.Snapshot) {
	r, ok := c.renderer()
	if !ok {
		return
	}

	c.mu.Lock()
	old := c.markerHandles
	c.markerHandles = nil
	c.mu.Unlock()
	for _, h := range old {
		h.Remove()
	}

	handles := make([]provider.OverlayHandle, 0, len(snap.Markers))
	for _, m := range snap.Markers {
		if c.variant == VariantUser && !snap.Layers[m.Layer] {
			continue
		}
		handles = append(handles, r.AddOverlay(provider.OverlaySpec{
			Position: types.LatLng{Lat: m.Lat, Lng: m.Lng},
			IconURL:  "/icons/" + m.Icon,
			IconSize: 32,
		}))
	}

	c.mu.Lock()
	c.markerHandles = handles
	c.mu.Unlock()
}

// syncTempMarker renders or removes the single drop-animated search pin.
func (c *Controller) syncTempMarker(snap mapstate.Snapshot) {
	r, ok := c.renderer()
	if !ok {
		return
	}

	c.mu.Lock()
	old := c.tempHandle
	c.tempHandle = nil
	c.mu.Unlock()
	if old != nil {
		old.Remove()
	}

	if snap.TempMarker == nil {
		return
	}
	h := r.AddOverlay(provider.OverlaySpec{
		Position:      *snap.TempMarker,
		IconURL:       "/icons/search_tmp.svg",
		IconSize:      24,
		Title:         "Search Result",
		DropAnimation: true,
	})

	c.mu.Lock()
	c.tempHandle = h
	c.mu.Unlock()
}

// applyPOIStyle swaps the renderer between hide-all-POI and default styling
// in place.
func (c *Controller) applyPOIStyle(snap mapstate.Snapshot) {
	r, ok := c.renderer()
	if !ok {
		return
	}
	r.SetOptions(provider.MapOptions{
		Draggable:        c.variant == VariantAdmin,
		Scrollwheel:      c.variant == VariantAdmin,
		DisableDefaultUI: true,
		ClickableIcons:   false,
		HideNativePOI:    !snap.ShowNativePOI,
	})
}

func markersEqual(a, b []types.Marker) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func boolMapEqual(a, b types.LayerVisibility) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func togglesEqual(a, b types.PlacesToggles) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func tempEqual(a, b *types.LatLng) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
