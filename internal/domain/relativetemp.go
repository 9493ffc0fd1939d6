package domain

import "math"

// maxWindPenaltyF caps how much wind can take off the relative temperature.
const maxWindPenaltyF = 9

// RelativeTemperatureDetail breaks the model down for rendering.
type RelativeTemperatureDetail struct {
	ValueF        float64
	PrecipPenalty float64
	WindPenalty   float64
	SunBonus      float64
	Wet           bool
}

// RelativeTemperature is the custom "feels" temperature: actual temperature
// minus a precipitation penalty and a capped wind penalty, plus a sun bonus
// when the hour is dry. It replaces any provider apparent temperature.
func RelativeTemperature(tempF, windMph float64, tod TimeOfDay, f ConditionFlags) float64 {
	return ComputeRelativeTemperature(tempF, windMph, tod, f).ValueF
}

// ComputeRelativeTemperature is RelativeTemperature with its components.
func ComputeRelativeTemperature(tempF, windMph float64, tod TimeOfDay, f ConditionFlags) RelativeTemperatureDetail {
	var d RelativeTemperatureDetail

	if !f.Slight {
		d.PrecipPenalty, d.Wet = precipitationPenalty(f)
	}
	d.WindPenalty = math.Min(maxWindPenaltyF, math.Max(0, windMph))
	if !d.Wet {
		d.SunBonus = sunBonus(tod, f)
	}

	d.ValueF = tempF - d.PrecipPenalty - d.WindPenalty + d.SunBonus
	return d
}

func precipitationPenalty(f ConditionFlags) (float64, bool) {
	switch {
	case f.Rain:
		switch {
		case f.Chance:
			return 3, true
		case f.Light:
			return 4, true
		case f.Heavy:
			return 10, true
		default:
			return 7, true
		}
	case f.Thunderstorm:
		if f.Chance {
			return 4, true
		}
		return 10, true
	case f.Snow:
		return 3, true
	}
	return 0, false
}

func sunBonus(tod TimeOfDay, f ConditionFlags) float64 {
	switch tod {
	case TimeDay:
		switch {
		case !f.Cloudy:
			return 10
		case f.Light:
			return 5
		default:
			return 2
		}
	case TimeDawn, TimeDusk:
		switch {
		case !f.Cloudy:
			return 5
		case f.Light:
			return 2
		}
	}
	return 0
}
