package domain

import (
	"fmt"
	"time"
)

// ForecastHour is one provider hour, already converted to °F and mph.
// Pointer fields are nil when the provider did not report them.
type ForecastHour struct {
	Time                 time.Time `json:"time"`
	TemperatureF         float64   `json:"temperature_f"`
	ApparentF            *float64  `json:"apparent_f,omitempty"`
	DewpointF            *float64  `json:"dewpoint_f,omitempty"`
	WindMph              float64   `json:"wind_mph"`
	PrecipProbabilityPct *float64  `json:"precip_probability_pct,omitempty"`
	CloudCoverPct        *float64  `json:"cloud_cover_pct,omitempty"`
	Condition            string    `json:"condition"`
}

// Forecast is an hourly series from one provider.
type Forecast struct {
	Provider string         `json:"provider"`
	Hours    []ForecastHour `json:"hours"`
}

// HourlyObservation is the pipeline's per-hour view of the weather. It is
// rebuilt on every run and never stored.
type HourlyObservation struct {
	Time                 time.Time
	TemperatureF         float64
	DewpointF            *float64
	WindMph              float64
	PrecipProbabilityPct *float64
	CloudCoverPct        *float64
	RawCondition         string
	Conditions           ConditionFlags
	TimeOfDay            TimeOfDay
	RelativeTempF        float64
	Wet                  bool
}

// BuildObservations joins the event hours with the forecast by epoch second.
// tods must be aligned with hours. Hours the forecast does not cover are
// dropped; if none are covered the result is ErrNoMatchingForecastHour.
func BuildObservations(hours []time.Time, tods []TimeOfDay, fc Forecast) ([]HourlyObservation, error) {
	byEpoch := make(map[int64]ForecastHour, len(fc.Hours))
	for _, h := range fc.Hours {
		byEpoch[h.Time.Unix()] = h
	}

	obs := make([]HourlyObservation, 0, len(hours))
	for i, t := range hours {
		fh, ok := byEpoch[t.Unix()]
		if !ok {
			continue
		}
		tod := TimeUnknown
		if i < len(tods) {
			tod = tods[i]
		}
		flags := ParseCondition(fh.Condition)
		rt := ComputeRelativeTemperature(fh.TemperatureF, fh.WindMph, tod, flags)

		obs = append(obs, HourlyObservation{
			Time:                 t,
			TemperatureF:         fh.TemperatureF,
			DewpointF:            fh.DewpointF,
			WindMph:              fh.WindMph,
			PrecipProbabilityPct: fh.PrecipProbabilityPct,
			CloudCoverPct:        fh.CloudCoverPct,
			RawCondition:         fh.Condition,
			Conditions:           flags,
			TimeOfDay:            tod,
			RelativeTempF:        rt.ValueF,
			Wet:                  rt.Wet,
		})
	}

	if len(obs) == 0 {
		if len(hours) == 0 {
			return nil, ErrNoMatchingForecastHour
		}
		return nil, fmt.Errorf("%w: %s to %s (%d forecast hours)",
			ErrNoMatchingForecastHour,
			hours[0].Format(time.RFC3339), hours[len(hours)-1].Format(time.RFC3339), len(fc.Hours))
	}
	return obs, nil
}
