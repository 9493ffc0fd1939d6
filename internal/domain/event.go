package domain

import "time"

// Guest and event statuses as reported by the calendar.
const (
	GuestAccepted   = "accepted"
	StatusCancelled = "cancelled"
)

// Event is a calendar event candidate for annotation.
type Event struct {
	ID          string
	CalendarID  string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Location    string
	Title       string
	Description string
	ColorID     string
	GuestStatus string // acceptance status of the calendar owner
	Status      string
}

// Outcome of processing one event in a run.
type Outcome string

const (
	OutcomeUpdated Outcome = "updated"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Annotation is the record of what a run did to one event. It is what the
// annotation publisher emits downstream.
type Annotation struct {
	EventID     string     `json:"event_id"`
	RunID       string     `json:"run_id"`
	Outcome     Outcome    `json:"outcome"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Provider    string     `json:"provider,omitempty"`
	Verdict     Verdict    `json:"verdict,omitempty"`
	Score       float64    `json:"score,omitempty"`
	Gear        []GearPick `json:"gear,omitempty"`
	Error       string     `json:"error,omitempty"`
	ProcessedAt time.Time  `json:"processed_at"`
}

// NewAnnotation stamps an annotation with the package clock.
func NewAnnotation(eventID, runID string, outcome Outcome) Annotation {
	return Annotation{
		EventID:     eventID,
		RunID:       runID,
		Outcome:     outcome,
		ProcessedAt: clock.Now().UTC(),
	}
}
