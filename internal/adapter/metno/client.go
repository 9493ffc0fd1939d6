// Package metno fetches hourly forecasts from the MET Norway
// Locationforecast 2.0 API and converts them to domain forecasts in
// imperial units.
package metno

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/couchcryptid/event-weather-service/internal/domain"
	"github.com/couchcryptid/event-weather-service/internal/observability"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultBaseURL = "https://api.met.no/weatherapi/locationforecast/2.0"
	// Provider names the source in the "Source:" line.
	Provider = "met.no"
)

// APIError is a non-200 answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("met.no API error %d: %s", e.StatusCode, e.Message)
}

// Client implements the pipeline ForecastSource. Calls go through a circuit
// breaker so a failing upstream fails fast for the rest of a run.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	breaker    *gobreaker.CircuitBreaker[[]domain.ForecastHour]
	metrics    *observability.Metrics
	logger     *slog.Logger

	// MET Norway asks clients to revalidate with If-Modified-Since.
	mu    sync.Mutex
	cache map[string]cachedSeries
}

type cachedSeries struct {
	lastModified string
	hours        []domain.ForecastHour
}

// NewClient creates a client. userAgent must identify the application and a
// contact; the API rejects requests without one.
func NewClient(userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		userAgent:  userAgent,
		breaker:    newBreaker("metno"),
		metrics:    metrics,
		logger:     logger,
		cache:      make(map[string]cachedSeries),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]domain.ForecastHour] {
	return gobreaker.NewCircuitBreaker[[]domain.ForecastHour](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			// Client errors are our fault, not an upstream outage.
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
			}
			return err == nil
		},
	})
}

// HourlyForecast returns the hourly steps in [from, to), from truncated to
// the hour.
func (c *Client) HourlyForecast(ctx context.Context, coords domain.Coordinates, from, to time.Time) (domain.Forecast, error) {
	hours, err := c.breaker.Execute(func() ([]domain.ForecastHour, error) {
		return c.fetch(ctx, coords)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.ForecastRequests.WithLabelValues("breaker_open").Inc()
		return domain.Forecast{}, fmt.Errorf("met.no unavailable: %w", err)
	case err != nil:
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return domain.Forecast{}, err
	}
	c.metrics.ForecastRequests.WithLabelValues("success").Inc()

	from = from.Truncate(time.Hour)
	fc := domain.Forecast{Provider: Provider}
	for _, h := range hours {
		if h.Time.Before(from) || !h.Time.Before(to) {
			continue
		}
		fc.Hours = append(fc.Hours, h)
	}
	return fc, nil
}

func (c *Client) fetch(ctx context.Context, coords domain.Coordinates) ([]domain.ForecastHour, error) {
	u, err := url.Parse(c.baseURL + "/compact")
	if err != nil {
		return nil, fmt.Errorf("build URL: %w", err)
	}
	// The API wants at most four decimals; more defeats its caching.
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(coords.Lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(coords.Lon, 'f', 4, 64))
	u.RawQuery = q.Encode()
	key := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.mu.Lock()
	cached, haveCached := c.cache[key]
	c.mu.Unlock()
	if haveCached && cached.lastModified != "" {
		req.Header.Set("If-Modified-Since", cached.lastModified)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues("metno").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && haveCached:
		c.logger.Debug("forecast not modified", "coords", coords.Key())
		return cached.hours, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	hours, err := decodeHours(resp.Body)
	if err != nil {
		return nil, err
	}

	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		c.mu.Lock()
		c.cache[key] = cachedSeries{lastModified: lm, hours: hours}
		c.mu.Unlock()
	}
	return hours, nil
}

// ParseCompact converts a saved compact response into a forecast covering
// every hourly step.
func ParseCompact(r io.Reader) (domain.Forecast, error) {
	hours, err := decodeHours(r)
	if err != nil {
		return domain.Forecast{}, err
	}
	return domain.Forecast{Provider: Provider, Hours: hours}, nil
}

func decodeHours(r io.Reader) ([]domain.ForecastHour, error) {
	var doc forecastDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	return doc.hours(), nil
}
