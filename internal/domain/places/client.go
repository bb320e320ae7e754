package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/cartodesk/cartodesk-api/internal/types"
)

// Client is the nearby-search backend the engine queries.
type Client interface {
	// NearbySearch returns places of the given backend type inside the
	// viewport. The backend limits results server-side to relevant hits.
	NearbySearch(ctx context.Context, bounds types.Bounds, placeType string) ([]types.PlaceResult, error)
	// Details fetches the lazily-loaded popup payload for one place.
	Details(ctx context.Context, placeID string) (*types.PlaceDetails, error)
}

const googlePlacesBaseURL = "https://maps.googleapis.com/maps/api/place"

// GoogleClient talks to the Google Places REST API. The REST nearby search
// takes a center and radius, so the client circumscribes the viewport; the
// viewport itself stays the cache key upstream.
type GoogleClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

var _ Client = (*GoogleClient)(nil)

// GoogleClientOption tunes client construction.
type GoogleClientOption func(*GoogleClient)

// WithBaseURL points the client at an alternate endpoint (tests).
func WithBaseURL(u string) GoogleClientOption {
	return func(c *GoogleClient) { c.baseURL = u }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) GoogleClientOption {
	return func(c *GoogleClient) { c.httpClient = hc }
}

// NewGoogleClient builds a Places client. Calls are capped at 10 QPS since
// the backend is metered.
func NewGoogleClient(apiKey string, logger *slog.Logger, opts ...GoogleClientOption) *GoogleClient {
	c := &GoogleClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		baseURL:    googlePlacesBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *GoogleClient) NearbySearch(ctx context.Context, bounds types.Bounds, placeType string) ([]types.PlaceResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("nearby search rate limit: %w", err)
	}

	center := bounds.Center()
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lng))
	q.Set("radius", fmt.Sprintf("%.0f", bounds.RadiusMeters()))
	q.Set("type", placeType)

	var payload types.NearbySearchResponse
	if err := c.getJSON(ctx, c.baseURL+"/nearbysearch/json?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("nearby search request: %w", err)
	}
	if payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("nearby search failed: status %s", payload.Status)
	}
	return payload.Results, nil
}

func (c *GoogleClient) Details(ctx context.Context, placeID string) (*types.PlaceDetails, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("place details rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("place_id", placeID)
	q.Set("fields", "place_id,name,formatted_address,rating")

	var payload types.PlaceDetailsResponse
	if err := c.getJSON(ctx, c.baseURL+"/details/json?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("place details request: %w", err)
	}
	if payload.Status != "OK" {
		return nil, fmt.Errorf("place details failed: status %s", payload.Status)
	}
	return &types.PlaceDetails{
		PlaceID:          payload.Result.PlaceID,
		Name:             payload.Result.Name,
		FormattedAddress: payload.Result.FormattedAddress,
		Rating:           payload.Result.Rating,
	}, nil
}

func (c *GoogleClient) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected http status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
