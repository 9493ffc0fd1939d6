package metno

import (
	"time"

	"github.com/couchcryptid/event-weather-service/internal/domain"
)

// MET Norway GeoJSON response, reduced to the fields the compact and
// complete endpoints share with what we render.

type forecastDocument struct {
	Properties struct {
		Timeseries []timeStep `json:"timeseries"`
	} `json:"properties"`
}

type timeStep struct {
	Time time.Time `json:"time"`
	Data struct {
		Instant struct {
			Details instantDetails `json:"details"`
		} `json:"instant"`
		Next1Hours *periodData `json:"next_1_hours,omitempty"`
	} `json:"data"`
}

type instantDetails struct {
	AirTemperature      *float64 `json:"air_temperature"`
	DewPointTemperature *float64 `json:"dew_point_temperature"`
	CloudAreaFraction   *float64 `json:"cloud_area_fraction"`
	WindSpeed           *float64 `json:"wind_speed"`
}

type periodData struct {
	Summary struct {
		SymbolCode string `json:"symbol_code"`
	} `json:"summary"`
	Details struct {
		PrecipitationAmount        *float64 `json:"precipitation_amount"`
		ProbabilityOfPrecipitation *float64 `json:"probability_of_precipitation"`
	} `json:"details"`
}

const mpsToMph = 2.23694

func celsiusToF(c float64) float64 { return c*9/5 + 32 }

func optCelsiusToF(c *float64) *float64 {
	if c == nil {
		return nil
	}
	f := celsiusToF(*c)
	return &f
}

// hours keeps the steps with hourly resolution. The long-range tail of the
// series only has 6-hour periods and is dropped.
func (d forecastDocument) hours() []domain.ForecastHour {
	out := make([]domain.ForecastHour, 0, len(d.Properties.Timeseries))
	for _, s := range d.Properties.Timeseries {
		in := s.Data.Instant.Details
		if s.Data.Next1Hours == nil || in.AirTemperature == nil {
			continue
		}
		h := domain.ForecastHour{
			Time:                 s.Time.UTC(),
			TemperatureF:         celsiusToF(*in.AirTemperature),
			DewpointF:            optCelsiusToF(in.DewPointTemperature),
			CloudCoverPct:        in.CloudAreaFraction,
			PrecipProbabilityPct: s.Data.Next1Hours.Details.ProbabilityOfPrecipitation,
			Condition:            ConditionFromSymbol(s.Data.Next1Hours.Summary.SymbolCode),
		}
		if in.WindSpeed != nil {
			h.WindMph = *in.WindSpeed * mpsToMph
		}
		out = append(out, h)
	}
	return out
}
