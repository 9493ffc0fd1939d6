package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/event-weather-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	windowFrom = time.Date(2024, 5, 1, 5, 0, 0, 0, time.UTC)
	windowTo   = time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)
)

func TestEventStore_ListEvents(t *testing.T) {
	db := new(mockDBTX)
	store := NewEventStore(db, nil)

	start := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	rows := newMockRows([][]any{
		{"evt-1", "primary", start, start.Add(time.Hour), false, "Zilker Park", "Morning Run", "", "5", "accepted", "confirmed"},
		{"evt-2", "work", start.Add(24 * time.Hour), start.Add(48 * time.Hour), true, "", "Offsite", "Bring laptop", "", "", "confirmed"},
	})
	db.On("Query", mock.Anything, listEventsSQL, []any{windowFrom, windowTo}).Return(rows, nil)

	events, err := store.ListEvents(context.Background(), windowFrom, windowTo)
	require.NoError(t, err)

	want := []domain.Event{
		{ID: "evt-1", CalendarID: "primary", Start: start, End: start.Add(time.Hour), Location: "Zilker Park",
			Title: "Morning Run", ColorID: "5", GuestStatus: "accepted", Status: "confirmed"},
		{ID: "evt-2", CalendarID: "work", Start: start.Add(24 * time.Hour), End: start.Add(48 * time.Hour), AllDay: true,
			Title: "Offsite", Description: "Bring laptop", Status: "confirmed"},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("ListEvents mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, rows.closed)
	db.AssertExpectations(t)
}

func TestEventStore_ListEvents_QueryError(t *testing.T) {
	db := new(mockDBTX)
	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := NewEventStore(db, nil).ListEvents(context.Background(), windowFrom, windowTo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query events")
}

func TestEventStore_ListEvents_ScanError(t *testing.T) {
	db := new(mockDBTX)
	rows := newMockRows([][]any{{"evt-1"}})
	rows.scanErr = errors.New("bad column")
	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	_, err := NewEventStore(db, nil).ListEvents(context.Background(), windowFrom, windowTo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan event")
	assert.True(t, rows.closed)
}

func TestEventStore_ListEvents_RowsError(t *testing.T) {
	db := new(mockDBTX)
	rows := newMockRows(nil)
	rows.errVal = errors.New("conn reset")
	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	_, err := NewEventStore(db, nil).ListEvents(context.Background(), windowFrom, windowTo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterate events")
}

func TestEventStore_UpdateEvent(t *testing.T) {
	db := new(mockDBTX)
	db.On("Exec", mock.Anything, updateEventSQL, []any{"evt-1", "Run | ☀️ 58°", "notes"}).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	err := NewEventStore(db, nil).UpdateEvent(context.Background(), "evt-1", "Run | ☀️ 58°", "notes")
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestEventStore_UpdateEvent_NotFound(t *testing.T) {
	db := new(mockDBTX)
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := NewEventStore(db, nil).UpdateEvent(context.Background(), "gone", "t", "d")
	require.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestEventStore_UpdateEvent_DBError(t *testing.T) {
	db := new(mockDBTX)
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("deadlock detected"))

	err := NewEventStore(db, nil).UpdateEvent(context.Background(), "evt-1", "t", "d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
}

func TestMigrate(t *testing.T) {
	db := new(mockDBTX)
	db.On("Exec", mock.Anything, schema, mock.Anything).Return(pgconn.NewCommandTag("CREATE TABLE"), nil)
	require.NoError(t, Migrate(context.Background(), db))
	db.AssertExpectations(t)

	failing := new(mockDBTX)
	failing.On("Exec", mock.Anything, schema, mock.Anything).Return(pgconn.CommandTag{}, errors.New("permission denied"))
	require.ErrorContains(t, Migrate(context.Background(), failing), "permission denied")
}
