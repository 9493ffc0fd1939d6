package metno

import (
	"testing"

	"github.com/couchcryptid/event-weather-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestConditionFromSymbol(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"clearsky_day", "Clear"},
		{"clearsky_polartwilight", "Clear"},
		{"fair_night", "Mostly Clear"},
		{"cloudy", "Cloudy"},
		{"heavyrain", "Heavy Rain"},
		{"lightsleetshowers_day", "Light Sleet Showers"},
		{"snowandthunder", "Thunderstorms And Snow"},
		{"  RAIN  ", "Rain"},
		{"newweatherandthunder_day", "Thunderstorms"},
		{"", ""},
		{"sandstorm", ""},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ConditionFromSymbol(tt.code))
		})
	}
}

// Every mapped phrase must land in the category its symbol names.
func TestConditionFromSymbol_ParsesAsExpected(t *testing.T) {
	tests := []struct {
		code string
		want func(domain.ConditionFlags) bool
	}{
		{"clearsky", domain.ConditionFlags.Clear},
		{"partlycloudy", func(f domain.ConditionFlags) bool { return f.Cloudy && f.Light }},
		{"cloudy", func(f domain.ConditionFlags) bool { return f.Cloudy && !f.Light }},
		{"lightrain", func(f domain.ConditionFlags) bool { return f.Rain && f.Light }},
		{"heavyrainshowers", func(f domain.ConditionFlags) bool { return f.Rain && f.Heavy }},
		{"sleet", func(f domain.ConditionFlags) bool { return f.Snow }},
		{"heavysnow", func(f domain.ConditionFlags) bool { return f.Snow && f.Heavy }},
		{"rainandthunder", func(f domain.ConditionFlags) bool { return f.Thunderstorm }},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			flags := domain.ParseCondition(ConditionFromSymbol(tt.code))
			assert.True(t, tt.want(flags), "%s parsed as %+v", tt.code, flags)
		})
	}
}
