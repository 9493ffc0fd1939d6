package domain

import (
	"time"
)

// TimeOfDay buckets an hour relative to sunrise and sunset.
type TimeOfDay string

const (
	TimeNight   TimeOfDay = "night"
	TimeDawn    TimeOfDay = "dawn"
	TimeDay     TimeOfDay = "day"
	TimeDusk    TimeOfDay = "dusk"
	TimeUnknown TimeOfDay = "unknown"
)

// SolarLookup returns the solar times for the calendar day containing date.
// Implementations are expected to cache per (coordinates, date).
type SolarLookup func(date time.Time) (SolarTimes, error)

// ClassifyHour places t relative to sunrise and sunset. Dawn is the
// dawnMinutes before sunrise and dusk the duskMinutes after sunset; the
// checks run in order and the first match wins.
func ClassifyHour(t, sunrise, sunset time.Time, dawnMinutes, duskMinutes int) TimeOfDay {
	dawn := sunrise.Add(-time.Duration(dawnMinutes) * time.Minute)
	dusk := sunset.Add(time.Duration(duskMinutes) * time.Minute)

	switch {
	case t.Before(dawn):
		return TimeNight
	case t.Before(sunrise):
		return TimeDawn
	case t.Before(sunset):
		return TimeDay
	case t.Before(dusk):
		return TimeDusk
	default:
		return TimeNight
	}
}

// EventHours returns the top-of-hour timestamps covering [start, end) plus
// one trailing hour of lookahead.
func EventHours(start, end time.Time) []time.Time {
	h := start.Truncate(time.Hour)
	var hours []time.Time
	for h.Before(end) {
		hours = append(hours, h)
		h = h.Add(time.Hour)
	}
	return append(hours, h)
}

// ClassifySpan classifies every hour. If solar data is unavailable for any
// day in the span the whole sequence is TimeUnknown, so the caller still gets
// a forecast, just without sun-based adjustments.
func ClassifySpan(hours []time.Time, lookup SolarLookup, dawnMinutes, duskMinutes int) []TimeOfDay {
	out := make([]TimeOfDay, len(hours))
	for i, h := range hours {
		st, err := lookup(h)
		if err != nil {
			return unknownSpan(len(hours))
		}
		out[i] = ClassifyHour(h, st.Sunrise.Time, st.Sunset.Time, dawnMinutes, duskMinutes)
	}
	return out
}

func unknownSpan(n int) []TimeOfDay {
	out := make([]TimeOfDay, n)
	for i := range out {
		out[i] = TimeUnknown
	}
	return out
}
