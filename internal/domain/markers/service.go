// Package markers implements marker creation and removal on top of the map
// state store, including the icon-selection validation the creation modal
// enforces.
package markers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cartodesk/cartodesk-api/internal/domain/mapstate"
	"github.com/cartodesk/cartodesk-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for marker operations.
type Service interface {
	List(ctx context.Context) []types.Marker
	Add(ctx context.Context, lat, lng float64, icon string, layer types.MarkerLayer) (types.Marker, error)
	Remove(ctx context.Context, id string) error
}

type ServiceImpl struct {
	store  *mapstate.Store
	logger *slog.Logger
}

func NewServiceImpl(store *mapstate.Store, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{store: store, logger: logger}
}

func (s *ServiceImpl) List(_ context.Context) []types.Marker {
	return s.store.Snapshot().Markers
}

// Add validates and places a marker. An icon must be selected; without one
// the marker list is left unchanged and a validation error surfaces.
func (s *ServiceImpl) Add(ctx context.Context, lat, lng float64, icon string, layer types.MarkerLayer) (types.Marker, error) {
	if icon == "" {
		return types.Marker{}, fmt.Errorf("%w: an icon must be selected", types.ErrBadRequest)
	}
	if layer == "" {
		layer = types.LayerTerrain
	}
	if !layer.Valid() {
		return types.Marker{}, fmt.Errorf("%w: unknown layer %q", types.ErrBadRequest, layer)
	}

	m := types.Marker{
		ID:    uuid.NewString(),
		Lat:   lat,
		Lng:   lng,
		Icon:  icon,
		Layer: layer,
	}
	s.store.AddMarker(m)
	s.logger.InfoContext(ctx, "marker added", "id", m.ID, "layer", m.Layer)
	return m, nil
}

func (s *ServiceImpl) Remove(ctx context.Context, id string) error {
	found := false
	for _, m := range s.store.Snapshot().Markers {
		if m.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: marker %s", types.ErrNotFound, id)
	}
	s.store.RemoveMarker(id)
	s.logger.InfoContext(ctx, "marker removed", "id", id)
	return nil
}
