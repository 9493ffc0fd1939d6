package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/event-weather-service/internal/domain"
	"github.com/couchcryptid/event-weather-service/internal/observability"
)

const defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// minRelevance drops fuzzy matches; Mapbox answers almost any query with
// something.
const minRelevance = 0.5

// Client implements domain.CoordinateResolver using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox geocoding client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Resolve forward-geocodes a free-form event location. A query with no
// sufficiently relevant match returns domain.ErrCoordinatesNotFound.
func (c *Client) Resolve(ctx context.Context, location string) (domain.Coordinates, error) {
	query := strings.TrimSpace(location)
	if query == "" {
		return domain.Coordinates{}, domain.ErrCoordinatesNotFound
	}

	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(query))
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"types":        {"address,poi,place,locality,neighborhood,postcode"},
	}

	f, err := c.doRequest(ctx, u+"?"+params.Encode())
	if err != nil {
		return domain.Coordinates{}, err
	}
	if f == nil || len(f.Center) != 2 || f.Relevance < minRelevance {
		return domain.Coordinates{}, fmt.Errorf("%w: %q", domain.ErrCoordinatesNotFound, query)
	}

	c.logger.Debug("location resolved", "location", query, "place", f.PlaceName, "relevance", f.Relevance)
	// Mapbox uses lon,lat order.
	return domain.Coordinates{Lat: f.Center[1], Lon: f.Center[0]}, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (*feature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues("mapbox").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(mapboxResp.Features) == 0 {
		return nil, nil
	}
	return &mapboxResp.Features[0], nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Relevance float64   `json:"relevance"`
}
