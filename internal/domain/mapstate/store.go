// Package mapstate holds the process-wide reactive map state: camera,
// provider selection, markers, layer visibility, places toggles and search
// configuration. The Store is the single source of truth for every map
// surface; all mutation goes through its methods and every change notifies
// subscribers with a stable snapshot.
package mapstate

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cartodesk/cartodesk-api/internal/domain/geolocation"
	"github.com/cartodesk/cartodesk-api/internal/domain/provider"
	"github.com/cartodesk/cartodesk-api/internal/kvstore"
	"github.com/cartodesk/cartodesk-api/internal/types"
)

// Durable storage keys. Only the provider selection goes through the
// generic persistence key; markers have their own key so marker history
// survives reload even though the rest of the state resets.
const (
	providerKey = "map-provider"
	markersKey  = "markers"
)

// DefaultTempMarkerTTL is how long a temporary search-result pin survives
// without user action.
const DefaultTempMarkerTTL = 30 * time.Second

// Snapshot is an immutable view of the store state. Subscribers receive a
// deep copy, so a snapshot never tears under later mutations.
type Snapshot struct {
	Center              types.LatLng
	Zoom                int
	Provider            provider.Kind
	Markers             []types.Marker
	TempMarker          *types.LatLng
	Layers              types.LayerVisibility
	PlacesLayers        types.PlacesToggles
	PlacesConfig        types.PlacesConfig
	ShowNativePOI       bool
	Icons               []string
	Distances           []types.DistanceRecord
	LocationInitialized bool
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Markers = append([]types.Marker(nil), s.Markers...)
	out.Icons = append([]string(nil), s.Icons...)
	out.Distances = append([]types.DistanceRecord(nil), s.Distances...)
	out.Layers = s.Layers.Clone()
	out.PlacesLayers = s.PlacesLayers.Clone()
	if s.TempMarker != nil {
		tm := *s.TempMarker
		out.TempMarker = &tm
	}
	return out
}

// Store is the reactive state container.
type Store struct {
	mu          sync.Mutex
	logger      *slog.Logger
	kv          kvstore.Store
	resolver    *geolocation.Resolver
	state       Snapshot
	subs        map[int]func(Snapshot)
	nextSubID   int
	tempTTL     time.Duration
	tempGen     int
	locInFlight bool
}

// Option tunes store construction.
type Option func(*Store)

// WithTempMarkerTTL overrides the temporary-marker expiry window.
func WithTempMarkerTTL(d time.Duration) Option {
	return func(s *Store) { s.tempTTL = d }
}

// New builds a store with default state, restoring the persisted provider
// selection and marker list from kv.
func New(kv kvstore.Store, resolver *geolocation.Resolver, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		logger:   logger,
		kv:       kv,
		resolver: resolver,
		subs:     make(map[int]func(Snapshot)),
		tempTTL:  DefaultTempMarkerTTL,
		state: Snapshot{
			Center:       geolocation.Fallback,
			Zoom:         14,
			Provider:     provider.KindGoogle,
			Layers:       types.DefaultLayerVisibility(),
			PlacesLayers: types.DefaultPlacesToggles(),
			PlacesConfig: types.DefaultPlacesConfig(),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore()
	return s
}

func (s *Store) restore() {
	if raw, ok, err := s.kv.Get(providerKey); err != nil {
		s.logger.Error("failed to read persisted provider", "error", err)
	} else if ok {
		if kind := provider.Kind(raw); kind.Valid() {
			s.state.Provider = kind
		} else {
			s.logger.Warn("ignoring persisted provider of unknown kind", "provider", raw)
		}
	}

	if raw, ok, err := s.kv.Get(markersKey); err != nil {
		s.logger.Error("failed to read persisted markers", "error", err)
	} else if ok {
		var markers []types.Marker
		if err := json.Unmarshal([]byte(raw), &markers); err != nil {
			s.logger.Error("failed to decode persisted markers", "error", err)
		} else {
			s.state.Markers = markers
		}
	}
}

// Subscribe registers fn to run synchronously on every state change with a
// fresh snapshot. The returned cancel removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// mutate runs fn under the lock and then notifies subscribers outside it,
// so a subscriber may read or mutate the store without deadlocking.
func (s *Store) mutate(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state.clone()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}

// SetCenter moves the camera center.
func (s *Store) SetCenter(center types.LatLng) {
	s.mutate(func(st *Snapshot) { st.Center = center })
}

// SetZoom sets the camera zoom.
func (s *Store) SetZoom(zoom int) {
	s.mutate(func(st *Snapshot) { st.Zoom = zoom })
}

// SetProvider switches the active provider choice and persists it so the
// selection survives reload.
func (s *Store) SetProvider(kind provider.Kind) {
	s.mutate(func(st *Snapshot) { st.Provider = kind })
	if err := s.kv.Set(providerKey, string(kind)); err != nil {
		s.logger.Error("failed to persist provider selection", "error", err)
	}
}

// AddMarker appends a marker and persists the marker list.
func (s *Store) AddMarker(m types.Marker) {
	s.mutate(func(st *Snapshot) { st.Markers = append(st.Markers, m) })
	s.persistMarkers()
}

// RemoveMarker removes the marker with the given id, if present, and
// persists the marker list.
func (s *Store) RemoveMarker(id string) {
	s.mutate(func(st *Snapshot) {
		kept := st.Markers[:0]
		for _, m := range st.Markers {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		st.Markers = kept
	})
	s.persistMarkers()
}

func (s *Store) persistMarkers() {
	s.mu.Lock()
	raw, err := json.Marshal(s.state.Markers)
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("failed to encode markers", "error", err)
		return
	}
	if err := s.kv.Set(markersKey, string(raw)); err != nil {
		s.logger.Error("failed to persist markers", "error", err)
	}
}

// ToggleLayer flips the visibility of one marker layer.
func (s *Store) ToggleLayer(layer types.MarkerLayer) {
	s.mutate(func(st *Snapshot) { st.Layers[layer] = !st.Layers[layer] })
}

// TogglePlacesLayer flips whether the places engine queries one category.
func (s *Store) TogglePlacesLayer(category types.PlaceCategory) {
	s.mutate(func(st *Snapshot) { st.PlacesLayers[category] = !st.PlacesLayers[category] })
}

// SetPlacesConfig replaces the places search configuration.
func (s *Store) SetPlacesConfig(cfg types.PlacesConfig) {
	s.mutate(func(st *Snapshot) { st.PlacesConfig = cfg })
}

// SetShowNativePOI toggles the renderer's native points-of-interest layer.
func (s *Store) SetShowNativePOI(show bool) {
	s.mutate(func(st *Snapshot) { st.ShowNativePOI = show })
}

// SetIcons replaces the icon catalog.
func (s *Store) SetIcons(icons []string) {
	s.mutate(func(st *Snapshot) { st.Icons = append([]string(nil), icons...) })
}

// AddDistance prepends a distance record; the list is append-only and
// newest-first.
func (s *Store) AddDistance(rec types.DistanceRecord) {
	s.mutate(func(st *Snapshot) {
		st.Distances = append([]types.DistanceRecord{rec}, st.Distances...)
	})
}

// SetTempMarker places the transient search-result pin, replacing any prior
// one. The pin clears itself after the configured TTL unless replaced or
// cleared first.
func (s *Store) SetTempMarker(pos types.LatLng) {
	var gen int
	s.mutate(func(st *Snapshot) {
		st.TempMarker = &pos
		s.tempGen++
		gen = s.tempGen
	})
	time.AfterFunc(s.tempTTL, func() { s.expireTempMarker(gen) })
}

// ClearTempMarker removes the transient pin immediately.
func (s *Store) ClearTempMarker() {
	s.mutate(func(st *Snapshot) {
		st.TempMarker = nil
		s.tempGen++
	})
}

func (s *Store) expireTempMarker(gen int) {
	s.mu.Lock()
	stale := s.tempGen != gen || s.state.TempMarker == nil
	s.mu.Unlock()
	if stale {
		return
	}
	s.ClearTempMarker()
}

// FocusSearchResult recenters the camera on a place-search selection and
// drops the temporary pin there.
func (s *Store) FocusSearchResult(pos types.LatLng) {
	var gen int
	s.mutate(func(st *Snapshot) {
		st.Center = pos
		st.Zoom = 15
		st.TempMarker = &pos
		s.tempGen++
		gen = s.tempGen
	})
	time.AfterFunc(s.tempTTL, func() { s.expireTempMarker(gen) })
}

// InitializeLocation resolves the user's position once per session and
// centers the camera on it. Repeated calls after the first resolution
// (successful or not) are no-ops; the initialized flag flips exactly once.
func (s *Store) InitializeLocation(ctx context.Context) {
	s.mu.Lock()
	if s.state.LocationInitialized || s.locInFlight {
		s.mu.Unlock()
		return
	}
	s.locInFlight = true
	s.mu.Unlock()

	pos := s.resolver.Resolve(ctx, geolocation.DefaultOptions())

	s.mutate(func(st *Snapshot) {
		st.Center = pos
		st.LocationInitialized = true
	})
	s.mu.Lock()
	s.locInFlight = false
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "map centered to resolved location", "lat", pos.Lat, "lng", pos.Lng)
}
