package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelativeTemperature_ChanceRainDay(t *testing.T) {
	// 72 - 3 (chance rain) - 5 (wind); wet, so no sun bonus.
	got := RelativeTemperature(72, 5, TimeDay, ConditionFlags{Rain: true, Chance: true})
	assert.InDelta(t, 64, got, 1e-9)
}

func TestRelativeTemperature_ClearDay(t *testing.T) {
	// 60 - 3 (wind) + 10 (clear day sun).
	got := RelativeTemperature(60, 3, TimeDay, ConditionFlags{})
	assert.InDelta(t, 67, got, 1e-9)
}

func TestRelativeTemperature(t *testing.T) {
	tests := []struct {
		name  string
		temp  float64
		wind  float64
		tod   TimeOfDay
		flags ConditionFlags
		want  float64
	}{
		{"light rain", 50, 0, TimeDay, ConditionFlags{Rain: true, Light: true}, 46},
		{"heavy rain", 50, 0, TimeDay, ConditionFlags{Rain: true, Heavy: true}, 40},
		{"plain rain", 50, 0, TimeNight, ConditionFlags{Rain: true}, 43},
		{"chance beats light for rain", 50, 0, TimeDay, ConditionFlags{Rain: true, Chance: true, Light: true}, 47},
		{"thunderstorm", 70, 0, TimeDay, ConditionFlags{Thunderstorm: true}, 60},
		{"chance thunderstorm", 70, 0, TimeDay, ConditionFlags{Thunderstorm: true, Chance: true}, 66},
		{"snow", 30, 0, TimeDay, ConditionFlags{Snow: true}, 27},
		{"slight skips precip and counts as dry", 50, 0, TimeDay, ConditionFlags{Rain: true, Slight: true}, 60},
		{"wind capped at nine", 50, 25, TimeNight, ConditionFlags{}, 41},
		{"partly cloudy day", 50, 0, TimeDay, ConditionFlags{Cloudy: true, Light: true}, 55},
		{"cloudy day", 50, 0, TimeDay, ConditionFlags{Cloudy: true}, 52},
		{"clear dawn", 50, 0, TimeDawn, ConditionFlags{}, 55},
		{"partly cloudy dusk", 50, 0, TimeDusk, ConditionFlags{Cloudy: true, Light: true}, 52},
		{"overcast dusk", 50, 0, TimeDusk, ConditionFlags{Cloudy: true}, 50},
		{"clear night", 50, 0, TimeNight, ConditionFlags{}, 50},
		{"unknown time gets no sun", 50, 0, TimeUnknown, ConditionFlags{}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RelativeTemperature(tt.temp, tt.wind, tt.tod, tt.flags), 1e-9)
		})
	}
}

func TestComputeRelativeTemperature_Detail(t *testing.T) {
	d := ComputeRelativeTemperature(72, 5, TimeDay, ConditionFlags{Rain: true, Chance: true})

	assert.True(t, d.Wet)
	assert.InDelta(t, 3, d.PrecipPenalty, 1e-9)
	assert.InDelta(t, 5, d.WindPenalty, 1e-9)
	assert.Zero(t, d.SunBonus)
}

func TestRelativeTemperature_FromMultiClausePhrase(t *testing.T) {
	tests := []struct {
		text string
		tod  TimeOfDay
		want float64
	}{
		// Slight rain is dry; mostly cloudy day gives +2.
		{"Slight Chance Rain Showers And Mostly Cloudy", TimeDay, 62},
		// Partly cloudy carries Light into the dry cloudy branch: +5.
		{"Slight Chance Rain Showers Then Partly Cloudy", TimeDay, 65},
		{"Light Rain And Fog", TimeDay, 56},
		{"Chance Rain Showers And Patchy Fog", TimeDusk, 57},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.InDelta(t, tt.want, RelativeTemperature(60, 0, tt.tod, ParseCondition(tt.text)), 1e-9)
		})
	}
}
