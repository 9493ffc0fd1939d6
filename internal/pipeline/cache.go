package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/event-weather-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

type cacheEntry[T any] struct {
	value T
	err   error
}

// RunCache memoizes lookups for the lifetime of one run. Failures are cached
// as well, so every event sharing a key sees the same answer. Concurrent
// misses for the same key share one upstream call.
type RunCache struct {
	mu        sync.Mutex
	coords    map[string]cacheEntry[domain.Coordinates]
	forecasts map[string]cacheEntry[domain.Forecast]
	solar     map[string]cacheEntry[domain.SolarTimes]
	group     singleflight.Group
}

// NewRunCache returns an empty cache.
func NewRunCache() *RunCache {
	return &RunCache{
		coords:    make(map[string]cacheEntry[domain.Coordinates]),
		forecasts: make(map[string]cacheEntry[domain.Forecast]),
		solar:     make(map[string]cacheEntry[domain.SolarTimes]),
	}
}

// Coordinates returns the cached coordinates for location or calls fetch.
func (c *RunCache) Coordinates(ctx context.Context, location string, fetch func(context.Context) (domain.Coordinates, error)) (domain.Coordinates, error) {
	return load(c, c.coords, "coords:"+location, func() (domain.Coordinates, error) { return fetch(ctx) })
}

// Forecast returns the cached forecast for coordinates or calls fetch.
func (c *RunCache) Forecast(ctx context.Context, coords domain.Coordinates, fetch func(context.Context) (domain.Forecast, error)) (domain.Forecast, error) {
	return load(c, c.forecasts, "forecast:"+coords.Key(), func() (domain.Forecast, error) { return fetch(ctx) })
}

// SolarLookup returns a lookup that computes each (coordinates, date) pair
// once per run. The day is taken in the location's solar zone, so an event
// far from the display zone still gets its own sunrise and sunset.
func (c *RunCache) SolarLookup(coords domain.Coordinates) domain.SolarLookup {
	zone := coords.SolarZone()
	return func(date time.Time) (domain.SolarTimes, error) {
		local := date.In(zone)
		key := "solar:" + coords.Key() + "@" + local.Format(time.DateOnly)
		return load(c, c.solar, key, func() (domain.SolarTimes, error) {
			return domain.ComputeSolarTimes(coords, local)
		})
	}
}

func load[T any](c *RunCache, m map[string]cacheEntry[T], key string, fn func() (T, error)) (T, error) {
	c.mu.Lock()
	e, ok := m[key]
	c.mu.Unlock()
	if ok {
		return e.value, e.err
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		value, err := fn()
		e := cacheEntry[T]{value: value, err: err}
		c.mu.Lock()
		m[key] = e
		c.mu.Unlock()
		return e, nil
	})
	e = v.(cacheEntry[T])
	return e.value, e.err
}
