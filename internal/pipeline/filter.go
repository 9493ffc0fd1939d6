package pipeline

import (
	"regexp"
	"slices"
	"strings"

	"github.com/couchcryptid/event-weather-service/internal/domain"
)

// EventFilter decides whether an event is annotated in a run.
type EventFilter func(domain.Event) bool

// All matches when every filter matches. With no filters it matches
// everything.
func All(filters ...EventFilter) EventFilter {
	return func(e domain.Event) bool {
		for _, f := range filters {
			if !f(e) {
				return false
			}
		}
		return true
	}
}

// AnyOf matches when at least one filter matches.
func AnyOf(filters ...EventFilter) EventFilter {
	return func(e domain.Event) bool {
		for _, f := range filters {
			if f(e) {
				return true
			}
		}
		return false
	}
}

// Not inverts f.
func Not(f EventFilter) EventFilter {
	return func(e domain.Event) bool { return !f(e) }
}

// ByCalendar matches events on one of the given calendars.
func ByCalendar(ids ...string) EventFilter {
	return func(e domain.Event) bool { return slices.Contains(ids, e.CalendarID) }
}

// ByColor matches events with one of the given color ids.
func ByColor(ids ...string) EventFilter {
	return func(e domain.Event) bool { return slices.Contains(ids, e.ColorID) }
}

// TitlePattern matches the user part of the title against re, so the
// weather suffix of an earlier run never affects matching.
func TitlePattern(re *regexp.Regexp, delims domain.Delimiters) EventFilter {
	return func(e domain.Event) bool {
		s := domain.EventTextState{Title: e.Title, Delimiters: delims}
		return re.MatchString(s.UserTitle())
	}
}

// Keywords matches titles containing any of the words, case-insensitively.
func Keywords(words ...string) EventFilter {
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}
	return func(e domain.Event) bool {
		title := strings.ToLower(e.Title)
		for _, w := range lowered {
			if w != "" && strings.Contains(title, w) {
				return true
			}
		}
		return false
	}
}

// RequireLocation drops events without a location.
func RequireLocation() EventFilter {
	return func(e domain.Event) bool { return strings.TrimSpace(e.Location) != "" }
}

// SkipAllDay drops all-day events, which have no meaningful hours.
func SkipAllDay() EventFilter {
	return func(e domain.Event) bool { return !e.AllDay }
}

// SkipCancelled drops cancelled events.
func SkipCancelled() EventFilter {
	return func(e domain.Event) bool { return e.Status != domain.StatusCancelled }
}

// AcceptedOnly keeps events the owner has accepted or organizes. An empty
// guest status means the owner is the organizer.
func AcceptedOnly() EventFilter {
	return func(e domain.Event) bool {
		return e.GuestStatus == "" || e.GuestStatus == domain.GuestAccepted
	}
}

// FilterOptions is the configured event selection. Empty fields impose no
// constraint; cancelled events are always dropped.
type FilterOptions struct {
	CalendarIDs     []string
	ColorIDs        []string
	TitlePattern    *regexp.Regexp
	RequireLocation bool
	SkipAllDay      bool
	AcceptedOnly    bool
}

// Build combines the options into one filter.
func (o FilterOptions) Build(delims domain.Delimiters) EventFilter {
	filters := []EventFilter{SkipCancelled()}
	if len(o.CalendarIDs) > 0 {
		filters = append(filters, ByCalendar(o.CalendarIDs...))
	}
	if len(o.ColorIDs) > 0 {
		filters = append(filters, ByColor(o.ColorIDs...))
	}
	if o.TitlePattern != nil {
		filters = append(filters, TitlePattern(o.TitlePattern, delims))
	}
	if o.RequireLocation {
		filters = append(filters, RequireLocation())
	}
	if o.SkipAllDay {
		filters = append(filters, SkipAllDay())
	}
	if o.AcceptedOnly {
		filters = append(filters, AcceptedOnly())
	}
	return All(filters...)
}
