package api

import (
	"fmt"
	"log/slog"

	"github.com/cartodesk/cartodesk-api/internal/domain/distance"
	"github.com/cartodesk/cartodesk-api/internal/domain/geolocation"
	"github.com/cartodesk/cartodesk-api/internal/domain/icons"
	"github.com/cartodesk/cartodesk-api/internal/domain/mapstate"
	"github.com/cartodesk/cartodesk-api/internal/domain/markers"
	"github.com/cartodesk/cartodesk-api/internal/kvstore"
	"github.com/cartodesk/cartodesk-api/pkg/config"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	KV    *kvstore.SQLite
	Store *mapstate.Store

	// Repositories
	IconRepo icons.Repository

	// Services
	IconService     icons.Service
	MarkerService   markers.Service
	DistanceService distance.Service

	// Handlers
	IconHandler     *icons.Handler
	MarkerHandler   *markers.Handler
	DistanceHandler *distance.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize storage
	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	// Initialize state store
	if err := deps.initStore(); err != nil {
		return nil, fmt.Errorf("failed to init state store: %w", err)
	}

	// Initialize services
	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// Initialize handlers
	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initStorage opens the durable key-value store that backs provider
// selection and marker persistence
func (d *Dependencies) initStorage() error {
	kv, err := kvstore.OpenSQLite(d.Config.Storage.Path)
	if err != nil {
		return err
	}

	d.KV = kv
	d.Logger.Info("kv store opened", "path", d.Config.Storage.Path)
	return nil
}

// initStore builds the map state store. The API process has no platform
// geolocation capability, so the resolver answers with the fallback center;
// embedding surfaces supply a real locator on their side.
func (d *Dependencies) initStore() error {
	resolver := geolocation.NewResolver(nil, d.Logger)
	d.Store = mapstate.New(d.KV, resolver, d.Logger)

	d.Logger.Info("state store initialized")
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	if d.Config.Maps.APIKey == "" {
		return fmt.Errorf("maps api key is required")
	}

	d.IconRepo = icons.NewFSRepository(d.Config.Icons.Dir, d.Logger)
	d.IconService = icons.NewServiceImpl(d.IconRepo, d.Store, d.Logger)
	d.MarkerService = markers.NewServiceImpl(d.Store, d.Logger)

	matrixClient := distance.NewGoogleMatrixClient(d.Config.Maps.APIKey)
	d.DistanceService = distance.NewServiceImpl(matrixClient, d.Store, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.IconHandler = icons.NewHandler(d.IconService, d.Logger)
	d.MarkerHandler = markers.NewHandler(d.MarkerService, d.Logger)
	d.DistanceHandler = distance.NewHandler(d.DistanceService, d.Logger)
	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.KV != nil {
		if err := d.KV.Close(); err != nil {
			d.Logger.Error("failed to close kv store", "error", err)
		}
	}
	d.Logger.Info("cleanup completed")
}
