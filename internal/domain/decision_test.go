package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func below(limit float64) func(float64) bool {
	return func(v float64) bool { return v <= limit }
}

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		factors    []Factor
		wantV      Verdict
		wantScore  float64
		wantConf   float64
		wantBlocks []string
	}{
		{
			name: "all pass is GO",
			factors: []Factor{
				{Name: "wind", Value: ptr(5), Weight: 7, Check: below(20)},
				{Name: "precip", Value: ptr(10), Weight: 10, Required: true, Check: below(40)},
			},
			wantV: VerdictGo, wantScore: 100, wantConf: 1,
		},
		{
			name: "optional failure lowers score to MARGINAL",
			factors: []Factor{
				{Name: "wind", Value: ptr(25), Weight: 7, Check: below(20)},
				{Name: "cloud", Value: ptr(95), Weight: 3, Check: below(90)},
				{Name: "precip", Value: ptr(10), Weight: 10, Required: true, Check: below(40)},
			},
			wantV: VerdictMarginal, wantScore: 50, wantConf: 1,
		},
		{
			name: "required failure blocks regardless of score",
			factors: []Factor{
				{Name: "wind", Value: ptr(5), Weight: 7, Check: below(20)},
				{Name: "temperature", Value: ptr(60), Weight: 5, Check: func(v float64) bool { return v >= 20 }},
				{Name: "precip", Value: ptr(80), Weight: 1, Required: true, Check: below(40)},
			},
			wantV: VerdictNoGo, wantScore: 1200.0 / 13.0, wantConf: 1, wantBlocks: []string{"precip"},
		},
		{
			name: "missing data lowers confidence only",
			factors: []Factor{
				{Name: "wind", Value: ptr(5), Weight: 7, Check: below(20)},
				{Name: "cloud", Weight: 3, Check: below(90)},
			},
			wantV: VerdictGo, wantScore: 100, wantConf: 0.5,
		},
		{
			name:    "no factors is MARGINAL with zero confidence",
			factors: nil,
			wantV:   VerdictMarginal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Score(tt.factors, 70)
			assert.Equal(t, tt.wantV, d.Verdict)
			assert.InDelta(t, tt.wantScore, d.Score, 1e-9)
			assert.InDelta(t, tt.wantConf, d.Confidence, 1e-9)
			assert.Equal(t, tt.wantBlocks, d.BlockingFactors)
			assert.Len(t, d.Factors, len(tt.factors))
		})
	}
}

func TestScore_FactorStatuses(t *testing.T) {
	d := Score([]Factor{
		{Name: "a", Value: ptr(1), Weight: 1, Check: below(2)},
		{Name: "b", Value: ptr(3), Weight: 1, Check: below(2)},
		{Name: "c", Weight: 1, Check: below(2)},
	}, 70)

	require.Len(t, d.Factors, 3)
	assert.Equal(t, FactorPass, d.Factors[0].Status)
	assert.Equal(t, FactorFail, d.Factors[1].Status)
	assert.Equal(t, FactorMissing, d.Factors[2].Status)
}

func TestOutdoorFactors(t *testing.T) {
	obs := []HourlyObservation{
		{WindMph: 8, RelativeTempF: 50, PrecipProbabilityPct: ptr(10), CloudCoverPct: ptr(20)},
		{WindMph: 14, RelativeTempF: 44, PrecipProbabilityPct: ptr(30)},
	}

	d := Score(OutdoorFactors(obs, DefaultOutdoorLimits()), 70)
	assert.Equal(t, VerdictGo, d.Verdict)
	assert.Equal(t, 1.0, d.Confidence)

	values := make(map[string]float64)
	for _, f := range d.Factors {
		require.NotNil(t, f.Value, f.Name)
		values[f.Name] = *f.Value
	}
	assert.Equal(t, 30.0, values["precipitation"])
	assert.Equal(t, 14.0, values["wind"])
	assert.Equal(t, 44.0, values["relative temperature"])
	assert.Equal(t, 20.0, values["cloud cover"])
	assert.Equal(t, 0.0, values["thunderstorm"])
}

func TestOutdoorFactors_ThunderstormBlocks(t *testing.T) {
	obs := []HourlyObservation{
		{WindMph: 5, RelativeTempF: 70, PrecipProbabilityPct: ptr(20), Conditions: ConditionFlags{Thunderstorm: true, Chance: true}},
	}
	d := Score(OutdoorFactors(obs, DefaultOutdoorLimits()), 70)

	assert.Equal(t, VerdictNoGo, d.Verdict)
	assert.Equal(t, []string{"thunderstorm"}, d.BlockingFactors)
	assert.InDelta(t, 0.8, d.Confidence, 1e-9)
}

func hourObs(h int, precip float64, f ConditionFlags) HourlyObservation {
	return HourlyObservation{
		Time:                 at(h, 0),
		TemperatureF:         60,
		RelativeTempF:        55,
		WindMph:              5,
		PrecipProbabilityPct: ptr(precip),
		Conditions:           f,
		TimeOfDay:            TimeDay,
	}
}

func TestOutdoorFactors_ActivityLimits(t *testing.T) {
	obs := []HourlyObservation{
		{TemperatureF: 98, RelativeTempF: 90, WindMph: 5, PrecipProbabilityPct: ptr(0), CloudCoverPct: ptr(40),
			TimeOfDay: TimeDay, Conditions: ConditionFlags{Rain: true, Light: true}},
	}

	tests := []struct {
		name       string
		limits     OutdoorLimits
		wantBlocks []string
		wantFailed []string
	}{
		{"general limits ignore rain and light", DefaultOutdoorLimits(), nil, nil},
		{"running accepts light rain but not heat", ActivitiesNamed([]string{"running"})[0].Limits, nil, []string{"heat"}},
		{"cycling rejects any rain", ActivitiesNamed([]string{"cycling"})[0].Limits, []string{"rain"}, []string{"rain"}},
		{
			"astronomy needs dark clear sky",
			ActivitiesNamed([]string{"astronomy"})[0].Limits,
			[]string{"rain", "darkness", "cloud cover"},
			[]string{"rain", "darkness", "heat", "cloud cover"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Score(OutdoorFactors(obs, tt.limits), 70)
			assert.Equal(t, tt.wantBlocks, d.BlockingFactors)

			var failed []string
			for _, f := range d.Factors {
				if f.Status == FactorFail {
					failed = append(failed, f.Name)
				}
			}
			assert.Equal(t, tt.wantFailed, failed)
		})
	}
}

func TestOutdoorFactors_LightUnknownIsMissing(t *testing.T) {
	obs := []HourlyObservation{{RelativeTempF: 50, PrecipProbabilityPct: ptr(0), TimeOfDay: TimeUnknown}}

	d := Score(OutdoorFactors(obs, OutdoorLimits{Light: LightDaylight, MaxPrecipPct: 50}), 70)
	for _, f := range d.Factors {
		if f.Name == "daylight" {
			assert.Equal(t, FactorMissing, f.Status)
			return
		}
	}
	t.Fatal("daylight factor not present")
}

func TestBestSlot(t *testing.T) {
	wet := ConditionFlags{Rain: true}
	storm := ConditionFlags{Thunderstorm: true}

	t.Run("longest passing run wins a tie", func(t *testing.T) {
		obs := []HourlyObservation{
			hourObs(6, 80, wet), hourObs(7, 0, ConditionFlags{}), hourObs(8, 10, ConditionFlags{}),
			hourObs(9, 10, storm), hourObs(10, 0, ConditionFlags{}),
		}
		slot, ok := BestSlot(obs, DefaultOutdoorLimits(), 70)
		require.True(t, ok)
		assert.Equal(t, at(7, 0), slot.Start)
		assert.Equal(t, at(9, 0), slot.End)
		assert.InDelta(t, 100, slot.Score, 1e-9)
	})

	t.Run("gaps split runs", func(t *testing.T) {
		obs := []HourlyObservation{hourObs(7, 0, ConditionFlags{}), hourObs(9, 0, ConditionFlags{})}
		slot, ok := BestSlot(obs, DefaultOutdoorLimits(), 70)
		require.True(t, ok)
		assert.Equal(t, at(7, 0), slot.Start)
		assert.Equal(t, at(8, 0), slot.End)
	})

	t.Run("higher score beats longer run", func(t *testing.T) {
		windy := hourObs(8, 0, ConditionFlags{})
		windy.WindMph = 30
		obs := []HourlyObservation{
			hourObs(6, 0, ConditionFlags{}), hourObs(7, 0, ConditionFlags{}), windy,
			hourObs(9, 80, wet), hourObs(10, 0, ConditionFlags{}),
		}

		// Wind only lowers the score, so 8 AM is still a GO at a threshold
		// of 50, but the 6-9 run averages below the clean 10 AM hour.
		slot, ok := BestSlot(obs, DefaultOutdoorLimits(), 50)
		require.True(t, ok)
		assert.Equal(t, at(10, 0), slot.Start)
		assert.InDelta(t, 100, slot.Score, 1e-9)
	})

	t.Run("no GO hour", func(t *testing.T) {
		_, ok := BestSlot([]HourlyObservation{hourObs(6, 90, wet)}, DefaultOutdoorLimits(), 70)
		assert.False(t, ok)
	})
}
