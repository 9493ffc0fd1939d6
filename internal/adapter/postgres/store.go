package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/event-weather-service/internal/domain"
)

// EventStore reads and rewrites calendar events. It implements
// pipeline.EventSource and pipeline.EventUpdater.
type EventStore struct {
	db     DBTX
	logger *slog.Logger
}

// NewEventStore creates a store over a pool, connection or transaction.
func NewEventStore(db DBTX, logger *slog.Logger) *EventStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventStore{db: db, logger: logger}
}

const listEventsSQL = `
SELECT id, calendar_id, starts_at, ends_at, all_day, location, title,
       description, color_id, guest_status, status
FROM calendar_events
WHERE ends_at > $1 AND starts_at < $2
ORDER BY starts_at, id`

// ListEvents returns events overlapping [from, to), earliest first.
func (s *EventStore) ListEvents(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	rows, err := s.db.Query(ctx, listEventsSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var ev domain.Event
		if err := rows.Scan(
			&ev.ID, &ev.CalendarID, &ev.Start, &ev.End, &ev.AllDay, &ev.Location, &ev.Title,
			&ev.Description, &ev.ColorID, &ev.GuestStatus, &ev.Status,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

const updateEventSQL = `
UPDATE calendar_events
SET title = $2, description = $3, updated_at = now()
WHERE id = $1`

// UpdateEvent overwrites an event's title and description.
func (s *EventStore) UpdateEvent(ctx context.Context, id, title, description string) error {
	tag, err := s.db.Exec(ctx, updateEventSQL, id, title, description)
	if err != nil {
		return fmt.Errorf("update event %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update event %s: %w", id, domain.ErrEventNotFound)
	}
	s.logger.Debug("event updated", "event_id", id)
	return nil
}
