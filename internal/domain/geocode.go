package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultLocation returns the "City, State" fallback query, or "" when no
// city is configured.
func DefaultLocation(city, state string) string {
	city, state = strings.TrimSpace(city), strings.TrimSpace(state)
	switch {
	case city == "":
		return ""
	case state == "":
		return city
	default:
		return city + ", " + state
	}
}

// ResolveCoordinates resolves an event location, falling back to the
// configured default when the location is empty or not found. Transport
// errors are returned as is; only a miss on the fallback is fatal.
func ResolveCoordinates(ctx context.Context, r CoordinateResolver, location, fallback string, logger *slog.Logger) (Coordinates, error) {
	location = strings.TrimSpace(location)
	if location != "" {
		c, err := r.Resolve(ctx, location)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrCoordinatesNotFound) {
			return Coordinates{}, fmt.Errorf("resolve %q: %w", location, err)
		}
		logger.Warn("location not found, using default",
			"location", location,
			"default", fallback,
		)
	}

	if fallback == "" {
		return Coordinates{}, fmt.Errorf("%w: %q and no default location", ErrCoordinatesNotFound, location)
	}
	c, err := r.Resolve(ctx, fallback)
	if err != nil {
		return Coordinates{}, fmt.Errorf("resolve default %q: %w", fallback, err)
	}
	return c, nil
}
