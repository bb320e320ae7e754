package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/cartodesk/cartodesk-api/internal/types"
)

const googleMatrixBaseURL = "https://maps.googleapis.com/maps/api/distancematrix"

// GoogleMatrixClient talks to the Google Distance Matrix REST API.
type GoogleMatrixClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

var _ MatrixClient = (*GoogleMatrixClient)(nil)

// MatrixOption tunes client construction.
type MatrixOption func(*GoogleMatrixClient)

// WithMatrixBaseURL points the client at an alternate endpoint (tests).
func WithMatrixBaseURL(u string) MatrixOption {
	return func(c *GoogleMatrixClient) { c.baseURL = u }
}

func NewGoogleMatrixClient(apiKey string, opts ...MatrixOption) *GoogleMatrixClient {
	c := &GoogleMatrixClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		baseURL:    googleMatrixBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// Distance measures a driving route in metric units.
func (c *GoogleMatrixClient) Distance(ctx context.Context, origin, destination string) (types.DistanceResult, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("origins", origin)
	q.Set("destinations", destination)
	q.Set("mode", "driving")
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/json?"+q.Encode(), nil)
	if err != nil {
		return types.DistanceResult{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.DistanceResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.DistanceResult{}, fmt.Errorf("unexpected http status %d", resp.StatusCode)
	}

	var payload matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return types.DistanceResult{}, fmt.Errorf("decode response: %w", err)
	}
	if payload.Status != "OK" || len(payload.Rows) == 0 || len(payload.Rows[0].Elements) == 0 {
		return types.DistanceResult{}, fmt.Errorf("distance calculation failed: status %s", payload.Status)
	}

	element := payload.Rows[0].Elements[0]
	if element.Status != "OK" {
		return types.DistanceResult{}, fmt.Errorf("no route found: status %s", element.Status)
	}

	return types.DistanceResult{
		Km:      int(math.Round(float64(element.Distance.Value) / 1000)),
		Minutes: int(math.Round(float64(element.Duration.Value) / 60)),
	}, nil
}
