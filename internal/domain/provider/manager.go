package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cartodesk/cartodesk-api/internal/types"
)

// Manager is the single point of truth for which concrete provider instance
// is live on one surface. At most one instance is live at any time:
// superseded instances are destroyed before the next one is constructed.
type Manager struct {
	mu       sync.Mutex
	backends map[Kind]Backend
	logger   *slog.Logger
	current  Provider
}

// NewManager returns a manager that can construct providers for the kinds
// it has backends for.
func NewManager(backends map[Kind]Backend, logger *slog.Logger) *Manager {
	return &Manager{backends: backends, logger: logger}
}

// Switch tears down the current provider (if any), constructs a provider of
// the requested kind and initializes it. The new instance is registered as
// current only after a successful Init, so a failed switch leaves nothing
// half-initialized.
func (m *Manager) Switch(ctx context.Context, kind Kind, mount string, center types.LatLng, zoom int, opts Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.Destroy()
		m.current = nil
	}

	var next Provider
	switch kind {
	case KindGoogle:
		backend, ok := m.backends[KindGoogle]
		if !ok {
			return fmt.Errorf("%w: no backend configured for %q", types.ErrUnsupported, kind)
		}
		next = NewGoogleProvider(backend, m.logger)
	case KindMapbox:
		return fmt.Errorf("%w: mapbox provider not implemented yet", types.ErrUnsupported)
	default:
		return fmt.Errorf("%w: unknown provider type %q", types.ErrUnsupported, kind)
	}

	if err := next.Init(ctx, mount, center, zoom, opts); err != nil {
		return fmt.Errorf("failed to switch to %q provider: %w", kind, err)
	}

	m.current = next
	m.logger.InfoContext(ctx, "provider switched", "kind", kind, "mount", mount)
	return nil
}

// Current returns the live provider instance, if any.
func (m *Manager) Current() (Provider, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.current != nil
}

// Destroy tears down the live provider and clears the registration. Safe to
// call when nothing is live.
func (m *Manager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Destroy()
		m.current = nil
	}
}
