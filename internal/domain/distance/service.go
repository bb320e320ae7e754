// Package distance wraps the vendor distance-matrix API with a 24-hour
// client-side cache and records every calculation in the map state store.
package distance

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/cartodesk/cartodesk-api/internal/domain/mapstate"
	"github.com/cartodesk/cartodesk-api/internal/types"
	"github.com/cartodesk/cartodesk-api/pkg/observability"
)

// CacheTTL is how long a measured origin/destination pair is reused.
const CacheTTL = 24 * time.Hour

// MatrixClient is the distance-matrix backend.
type MatrixClient interface {
	Distance(ctx context.Context, origin, destination string) (types.DistanceResult, error)
}

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for distance calculations.
type Service interface {
	Calc(ctx context.Context, origin, destination string) (types.DistanceRecord, error)
	List(ctx context.Context) []types.DistanceRecord
}

type ServiceImpl struct {
	client MatrixClient
	store  *mapstate.Store
	cache  *cache.Cache
	logger *slog.Logger
}

func NewServiceImpl(client MatrixClient, store *mapstate.Store, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		client: client,
		store:  store,
		cache:  cache.New(CacheTTL, time.Hour),
		logger: logger,
	}
}

// Calc measures origin→destination, serving repeats from the 24h cache,
// and appends a record to the store either way.
func (s *ServiceImpl) Calc(ctx context.Context, origin, destination string) (types.DistanceRecord, error) {
	tracer := otel.Tracer("cartodesk/distance")
	ctx, span := tracer.Start(ctx, "Service.Calc")
	defer span.End()

	if origin == "" || destination == "" {
		return types.DistanceRecord{}, fmt.Errorf("%w: origin and destination are required", types.ErrBadRequest)
	}

	key := "dist:" + hashKey(origin, destination)
	span.SetAttributes(attribute.String("cache.key", key))

	var result types.DistanceResult
	if cached, found := s.cache.Get(key); found {
		result = cached.(types.DistanceResult)
		observability.DistanceRequests.WithLabelValues("hit").Inc()
		s.logger.InfoContext(ctx, "serving distance from cache", "key", key)
	} else {
		var err error
		result, err = s.client.Distance(ctx, origin, destination)
		if err != nil {
			observability.DistanceRequests.WithLabelValues("error").Inc()
			span.SetStatus(codes.Error, "distance calculation failed")
			return types.DistanceRecord{}, fmt.Errorf("distance calculation failed: %w", err)
		}
		s.cache.Set(key, result, cache.DefaultExpiration)
		observability.DistanceRequests.WithLabelValues("miss").Inc()
	}

	rec := types.DistanceRecord{
		ID:          uuid.NewString(),
		Date:        time.Now().Format(time.RFC3339),
		Origin:      origin,
		Destination: destination,
		Km:          result.Km,
		Minutes:     result.Minutes,
	}
	s.store.AddDistance(rec)
	span.SetStatus(codes.Ok, "distance recorded")
	return rec, nil
}

// List returns the recorded calculations, newest first.
func (s *ServiceImpl) List(_ context.Context) []types.DistanceRecord {
	return s.store.Snapshot().Distances
}

// hashKey mirrors the stable origin-destination pair key: a 32-bit hash in
// base36.
func hashKey(origin, destination string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(origin + "-" + destination))
	return strconv.FormatUint(uint64(h.Sum32()), 36)
}
