package domain

import "context"

// CoordinateResolver turns a free-text location into coordinates. It
// returns ErrCoordinatesNotFound when the provider has no match.
type CoordinateResolver interface {
	Resolve(ctx context.Context, location string) (Coordinates, error)
}
