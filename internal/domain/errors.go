package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSolarEvent means the sun never crosses the requested altitude on
	// that date (polar day or night).
	ErrNoSolarEvent = errors.New("no solar event")

	// ErrCoordinatesNotFound means a location string did not resolve.
	ErrCoordinatesNotFound = errors.New("coordinates not found")

	// ErrNoMatchingForecastHour means the forecast had no hours inside the
	// event window. Events hitting it are skipped, not marked as failed.
	ErrNoMatchingForecastHour = errors.New("no matching forecast hour")

	// ErrEventNotFound means the event vanished between listing and update.
	ErrEventNotFound = errors.New("event not found")

	// ErrLockUnavailable aborts a whole batch run.
	ErrLockUnavailable = errors.New("run lock unavailable")
)

// EventUpdateError wraps any failure raised while annotating one event.
type EventUpdateError struct {
	EventID string
	Err     error
}

func (e *EventUpdateError) Error() string {
	return fmt.Sprintf("event %s: %v", e.EventID, e.Err)
}

func (e *EventUpdateError) Unwrap() error {
	return e.Err
}
