package surface

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartodesk/cartodesk-api/internal/domain/geolocation"
	"github.com/cartodesk/cartodesk-api/internal/domain/mapstate"
	"github.com/cartodesk/cartodesk-api/internal/domain/places"
	"github.com/cartodesk/cartodesk-api/internal/domain/provider"
	"github.com/cartodesk/cartodesk-api/internal/kvstore"
	"github.com/cartodesk/cartodesk-api/internal/types"
)

type fakeOverlay struct {
	spec    provider.OverlaySpec
	removed bool
	visible bool
	onClick func()
}

func (o *fakeOverlay) Show()             { o.visible = true }
func (o *fakeOverlay) Hide()             { o.visible = false }
func (o *fakeOverlay) Remove()           { o.removed = true }
func (o *fakeOverlay) OnClick(fn func()) { o.onClick = fn }

type fakeRenderer struct {
	mu       sync.Mutex
	center   types.LatLng
	zoom     int
	options  provider.MapOptions
	released bool
	overlays []*fakeOverlay
	handlers map[provider.EventType][]func(provider.Event)
}

func newFakeRenderer(cfg provider.RendererConfig) *fakeRenderer {
	return &fakeRenderer{
		center:   cfg.Center,
		zoom:     cfg.Zoom,
		options:  cfg.Options,
		handlers: make(map[provider.EventType][]func(provider.Event)),
	}
}

func (r *fakeRenderer) SetCenter(center types.LatLng) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.center = center
}

func (r *fakeRenderer) SetZoom(zoom int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zoom = zoom
}

func (r *fakeRenderer) SetOptions(opts provider.MapOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.options = opts
}

func (r *fakeRenderer) Zoom() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zoom
}

func (r *fakeRenderer) Bounds() (types.Bounds, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return types.Bounds{
		SouthWest: types.LatLng{Lat: r.center.Lat - 0.05, Lng: r.center.Lng - 0.05},
		NorthEast: types.LatLng{Lat: r.center.Lat + 0.05, Lng: r.center.Lng + 0.05},
	}, true
}

func (r *fakeRenderer) AddOverlay(spec provider.OverlaySpec) provider.OverlayHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := &fakeOverlay{spec: spec, visible: true}
	r.overlays = append(r.overlays, o)
	return o
}

func (r *fakeRenderer) On(event provider.EventType, fn func(provider.Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[event] = append(r.handlers[event], fn)
}

func (r *fakeRenderer) ShowPopup(provider.OverlayHandle, string) {}
func (r *fakeRenderer) ClosePopup()                              {}

func (r *fakeRenderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = true
}

func (r *fakeRenderer) fire(event provider.EventType, ev provider.Event) {
	r.mu.Lock()
	handlers := append([]func(provider.Event){}, r.handlers[event]...)
	r.mu.Unlock()
	for _, fn := range handlers {
		fn(ev)
	}
}

func (r *fakeRenderer) live() []*fakeOverlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*fakeOverlay, 0, len(r.overlays))
	for _, o := range r.overlays {
		if !o.removed {
			out = append(out, o)
		}
	}
	return out
}

func (r *fakeRenderer) liveMarkers() []*fakeOverlay {
	out := make([]*fakeOverlay, 0)
	for _, o := range r.live() {
		if o.spec.IconSize == 32 {
			out = append(out, o)
		}
	}
	return out
}

type fakeBackend struct {
	mu        sync.Mutex
	err       error
	renderers []*fakeRenderer
	onNew     func()
}

func (b *fakeBackend) NewRenderer(_ context.Context, _ string, cfg provider.RendererConfig) (provider.Renderer, error) {
	b.mu.Lock()
	if b.err != nil {
		b.mu.Unlock()
		return nil, b.err
	}
	r := newFakeRenderer(cfg)
	b.renderers = append(b.renderers, r)
	hook := b.onNew
	b.onNew = nil
	b.mu.Unlock()
	if hook != nil {
		hook()
	}
	return r, nil
}

func (b *fakeBackend) setErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

func (b *fakeBackend) latest() *fakeRenderer {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.renderers) == 0 {
		return nil
	}
	return b.renderers[len(b.renderers)-1]
}

type stubPlacesClient struct{}

func (stubPlacesClient) NearbySearch(context.Context, types.Bounds, string) ([]types.PlaceResult, error) {
	return nil, nil
}

func (stubPlacesClient) Details(context.Context, string) (*types.PlaceDetails, error) {
	return nil, errors.New("not implemented")
}

type fixture struct {
	store   *mapstate.Store
	backend *fakeBackend
	manager *provider.Manager
	engine  *places.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.Default()
	backend := &fakeBackend{}
	return &fixture{
		store:   mapstate.New(kvstore.NewMemory(), geolocation.NewResolver(nil, logger), logger),
		backend: backend,
		manager: provider.NewManager(map[provider.Kind]provider.Backend{provider.KindGoogle: backend}, logger),
		engine:  places.NewEngine(stubPlacesClient{}, logger),
	}
}

func (f *fixture) admin(onMarker MarkerRequestFunc) *Controller {
	return NewAdmin(f.store, f.manager, f.engine, "admin-map", onMarker, slog.Default())
}

func (f *fixture) user(onMarker MarkerRequestFunc) *Controller {
	return NewUser(f.store, f.manager, "user-map", onMarker, slog.Default())
}

func TestMountLifecycle(t *testing.T) {
	f := newFixture(t)
	c := f.admin(nil)

	assert.Equal(t, PhaseUninitialized, c.Phase())
	require.NoError(t, c.Mount(context.Background()))
	assert.Equal(t, PhaseReady, c.Phase())

	// Location is resolved once and the camera centered there
	snap := f.store.Snapshot()
	assert.True(t, snap.LocationInitialized)
	assert.Equal(t, geolocation.Fallback, snap.Center)

	r := f.backend.latest()
	require.NotNil(t, r)
	assert.True(t, r.options.Draggable)

	// Re-entrant mount is a no-op
	require.NoError(t, c.Mount(context.Background()))
	assert.Len(t, f.backend.renderers, 1)

	c.Unmount()
	assert.Equal(t, PhaseDestroyed, c.Phase())
	assert.True(t, r.released)
	_, ok := f.manager.Current()
	assert.False(t, ok)

	// Unmount is idempotent
	c.Unmount()
}

func TestMountFailureLeavesRemountable(t *testing.T) {
	f := newFixture(t)
	f.backend.setErr(errors.New("sdk load failed"))
	c := f.user(nil)

	err := c.Mount(context.Background())
	require.Error(t, err)
	assert.Equal(t, PhaseUninitialized, c.Phase())

	f.backend.setErr(nil)
	require.NoError(t, c.Mount(context.Background()))
	assert.Equal(t, PhaseReady, c.Phase())
}

func TestUserSurfaceIsLocked(t *testing.T) {
	f := newFixture(t)
	c := f.user(nil)
	require.NoError(t, c.Mount(context.Background()))

	r := f.backend.latest()
	assert.False(t, r.options.Draggable)
	assert.False(t, r.options.Scrollwheel)
	assert.True(t, r.options.DisableDefaultUI)
}

func TestMarkerLayerFiltering(t *testing.T) {
	f := newFixture(t)
	f.store.AddMarker(types.Marker{ID: "a", Icon: "pin.png", Layer: types.LayerTerrain})
	f.store.AddMarker(types.Marker{ID: "b", Icon: "pin.png", Layer: types.LayerHotel})
	f.store.ToggleLayer(types.LayerHotel) // hide hotels

	admin := f.admin(nil)
	require.NoError(t, admin.Mount(context.Background()))
	adminRenderer := f.backend.latest()

	// Admin always renders every marker regardless of visibility
	assert.Len(t, adminRenderer.liveMarkers(), 2)
	admin.Unmount()

	user := f.user(nil)
	require.NoError(t, user.Mount(context.Background()))
	userRenderer := f.backend.latest()

	// User renders only markers on visible layers
	assert.Len(t, userRenderer.liveMarkers(), 1)

	// Re-showing the layer re-renders the hidden marker
	f.store.ToggleLayer(types.LayerHotel)
	assert.Len(t, userRenderer.liveMarkers(), 2)
}

func TestReactiveMarkerSync(t *testing.T) {
	f := newFixture(t)
	c := f.admin(nil)
	require.NoError(t, c.Mount(context.Background()))
	r := f.backend.latest()

	f.store.AddMarker(types.Marker{ID: "a", Lat: 1, Lng: 2, Icon: "pin.png", Layer: types.LayerTerrain})
	require.Len(t, r.liveMarkers(), 1)
	assert.Equal(t, "/icons/pin.png", r.liveMarkers()[0].spec.IconURL)

	f.store.RemoveMarker("a")
	assert.Empty(t, r.liveMarkers())
}

func TestCameraSync(t *testing.T) {
	f := newFixture(t)
	c := f.admin(nil)
	require.NoError(t, c.Mount(context.Background()))
	r := f.backend.latest()

	target := types.LatLng{Lat: 48.8566, Lng: 2.3522}
	f.store.SetCenter(target)
	f.store.SetZoom(9)

	assert.Equal(t, target, r.center)
	assert.Equal(t, 9, r.zoom)
}

func TestTempMarkerAdminOnly(t *testing.T) {
	f := newFixture(t)

	admin := f.admin(nil)
	require.NoError(t, admin.Mount(context.Background()))
	adminRenderer := f.backend.latest()

	f.store.SetTempMarker(types.LatLng{Lat: 1, Lng: 2})

	var temp *fakeOverlay
	for _, o := range adminRenderer.live() {
		if o.spec.DropAnimation {
			temp = o
		}
	}
	require.NotNil(t, temp)
	assert.Equal(t, "/icons/search_tmp.svg", temp.spec.IconURL)
	assert.Equal(t, 24, temp.spec.IconSize)

	f.store.ClearTempMarker()
	assert.True(t, temp.removed)
	admin.Unmount()

	user := f.user(nil)
	require.NoError(t, user.Mount(context.Background()))
	userRenderer := f.backend.latest()

	f.store.SetTempMarker(types.LatLng{Lat: 1, Lng: 2})
	for _, o := range userRenderer.live() {
		assert.False(t, o.spec.DropAnimation)
	}
}

func TestMarkerRequestEvents(t *testing.T) {
	f := newFixture(t)

	var adminPicks []types.LatLng
	admin := f.admin(func(lat, lng float64) {
		adminPicks = append(adminPicks, types.LatLng{Lat: lat, Lng: lng})
	})
	require.NoError(t, admin.Mount(context.Background()))
	adminRenderer := f.backend.latest()

	// Admin picks with right-click; plain clicks are ignored
	adminRenderer.fire(provider.EventContextMenu, provider.Event{Position: types.LatLng{Lat: 1, Lng: 2}})
	adminRenderer.fire(provider.EventClick, provider.Event{Position: types.LatLng{Lat: 9, Lng: 9}})
	require.Len(t, adminPicks, 1)
	assert.Equal(t, types.LatLng{Lat: 1, Lng: 2}, adminPicks[0])
	admin.Unmount()

	var userPicks []types.LatLng
	user := f.user(func(lat, lng float64) {
		userPicks = append(userPicks, types.LatLng{Lat: lat, Lng: lng})
	})
	require.NoError(t, user.Mount(context.Background()))
	userRenderer := f.backend.latest()

	// User picks with left-click; context menu is ignored
	userRenderer.fire(provider.EventClick, provider.Event{Position: types.LatLng{Lat: 3, Lng: 4}})
	userRenderer.fire(provider.EventContextMenu, provider.Event{Position: types.LatLng{Lat: 9, Lng: 9}})
	require.Len(t, userPicks, 1)
	assert.Equal(t, types.LatLng{Lat: 3, Lng: 4}, userPicks[0])
}

func TestFocusSearchResultRecentersAndPins(t *testing.T) {
	f := newFixture(t)
	c := f.admin(nil)
	require.NoError(t, c.Mount(context.Background()))
	r := f.backend.latest()

	target := types.LatLng{Lat: 40.4168, Lng: -3.7038}
	f.store.FocusSearchResult(target)

	assert.Equal(t, target, r.center)
	assert.Equal(t, 15, r.zoom)

	found := false
	for _, o := range r.live() {
		if o.spec.DropAnimation {
			found = true
		}
	}
	assert.True(t, found)
}

func TestProviderSwapFailureThenRecovery(t *testing.T) {
	f := newFixture(t)
	c := f.admin(nil)
	require.NoError(t, c.Mount(context.Background()))
	first := f.backend.latest()

	// Mapbox has no backend: the swap fails and tears the old instance
	// down with nothing to replace it
	f.store.SetProvider(provider.KindMapbox)
	assert.True(t, first.released)
	_, ok := f.manager.Current()
	assert.False(t, ok)

	// Selecting google again brings a fresh instance up
	f.store.SetProvider(provider.KindGoogle)
	second := f.backend.latest()
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	assert.False(t, second.released)
	_, ok = f.manager.Current()
	assert.True(t, ok)
}

func TestNativePOIStyleSync(t *testing.T) {
	f := newFixture(t)
	c := f.admin(nil)
	require.NoError(t, c.Mount(context.Background()))
	r := f.backend.latest()

	assert.True(t, r.options.HideNativePOI)

	f.store.SetShowNativePOI(true)
	assert.False(t, r.options.HideNativePOI)

	f.store.SetShowNativePOI(false)
	assert.True(t, r.options.HideNativePOI)
}

func TestNativePOIToggleIgnoredOnUserSurface(t *testing.T) {
	f := newFixture(t)
	c := f.user(nil)
	require.NoError(t, c.Mount(context.Background()))
	r := f.backend.latest()

	assert.True(t, r.options.HideNativePOI)

	// The toggle is an editor control; published surfaces keep their style.
	f.store.SetShowNativePOI(true)
	assert.True(t, r.options.HideNativePOI)
}

func TestMountReconcilesMutationsDuringInit(t *testing.T) {
	f := newFixture(t)
	// Lands after the mount-time snapshot but before the subscription,
	// so no notification ever fires for it.
	f.backend.onNew = func() {
		f.store.AddMarker(types.Marker{ID: "early", Icon: "pin.png", Layer: types.LayerTerrain})
	}
	c := f.admin(nil)
	require.NoError(t, c.Mount(context.Background()))

	r := f.backend.latest()
	require.Len(t, r.liveMarkers(), 1)
	assert.Equal(t, "/icons/pin.png", r.liveMarkers()[0].spec.IconURL)
}
