package domain

import (
	"fmt"
	"strings"
	"time"
)

// Verdict is the outcome of a go/no-go evaluation.
type Verdict string

const (
	VerdictGo       Verdict = "GO"
	VerdictNoGo     Verdict = "NO_GO"
	VerdictMarginal Verdict = "MARGINAL"
)

// FactorStatus is the result of evaluating one factor.
type FactorStatus string

const (
	FactorPass    FactorStatus = "pass"
	FactorFail    FactorStatus = "fail"
	FactorMissing FactorStatus = "missing"
)

// Factor is one input to Score. A nil Value means the data was unavailable;
// such a factor neither passes nor fails but lowers confidence.
type Factor struct {
	Name     string
	Value    *float64
	Unit     string
	Required bool
	Weight   float64
	Check    func(v float64) bool
}

// FactorResult is the evaluated form of a Factor.
type FactorResult struct {
	Name     string       `json:"name"`
	Value    *float64     `json:"value,omitempty"`
	Unit     string       `json:"unit,omitempty"`
	Status   FactorStatus `json:"status"`
	Weight   float64      `json:"weight"`
	Required bool         `json:"required"`
}

// Decision is a scored verdict with its itemised factors.
type Decision struct {
	Verdict         Verdict        `json:"verdict"`
	Score           float64        `json:"score"`
	Confidence      float64        `json:"confidence"`
	Factors         []FactorResult `json:"factors"`
	BlockingFactors []string       `json:"blocking_factors,omitempty"`
	Summary         string         `json:"summary"`
	Activity        string         `json:"activity,omitempty"`
	BestSlot        *TimeSlot      `json:"best_slot,omitempty"`
}

// Score evaluates the factors. The score is the weighted share of passing
// factors among those with data, on a 0–100 scale. Any failing required
// factor forces NO_GO; otherwise the verdict is GO at or above threshold and
// MARGINAL below it. Confidence is the fraction of factors with data.
func Score(factors []Factor, threshold float64) Decision {
	d := Decision{Factors: make([]FactorResult, 0, len(factors))}

	var passWeight, evalWeight float64
	evaluated := 0
	for _, f := range factors {
		r := FactorResult{Name: f.Name, Value: f.Value, Unit: f.Unit, Weight: f.Weight, Required: f.Required}
		switch {
		case f.Value == nil || f.Check == nil:
			r.Status = FactorMissing
		case f.Check(*f.Value):
			r.Status = FactorPass
			passWeight += f.Weight
			evalWeight += f.Weight
			evaluated++
		default:
			r.Status = FactorFail
			evalWeight += f.Weight
			evaluated++
			if f.Required {
				d.BlockingFactors = append(d.BlockingFactors, f.Name)
			}
		}
		d.Factors = append(d.Factors, r)
	}

	if evalWeight > 0 {
		d.Score = 100 * passWeight / evalWeight
	}
	if len(factors) > 0 {
		d.Confidence = float64(evaluated) / float64(len(factors))
	}

	switch {
	case len(d.BlockingFactors) > 0:
		d.Verdict = VerdictNoGo
		d.Summary = "Blocked by: " + strings.Join(d.BlockingFactors, ", ")
	case evaluated > 0 && d.Score >= threshold:
		d.Verdict = VerdictGo
		d.Summary = "Conditions are favorable"
	default:
		d.Verdict = VerdictMarginal
		d.Summary = fmt.Sprintf("Score %.0f is below %.0f", d.Score, threshold)
	}
	return d
}

// OutdoorLimits are the thresholds for OutdoorFactors. A zero MaxTempF
// disables the heat factor.
type OutdoorLimits struct {
	MaxPrecipPct     float64
	MaxWindMph       float64
	MinRelativeTempF float64
	MaxTempF         float64
	MaxCloudPct      float64
	// CloudRequired makes cloud cover a blocking factor.
	CloudRequired bool
	Rain          RainTolerance
	Light         LightNeed
}

// DefaultOutdoorLimits suits a casual outdoor activity.
func DefaultOutdoorLimits() OutdoorLimits {
	return OutdoorLimits{
		MaxPrecipPct:     40,
		MaxWindMph:       20,
		MinRelativeTempF: 20,
		MaxCloudPct:      90,
	}
}

// OutdoorFactors derives the factor set for l from an event's observations,
// taking the worst hour for each factor. Precipitation and thunderstorms are
// always required; the rain, light and heat factors appear only when l asks
// for them.
func OutdoorFactors(obs []HourlyObservation, l OutdoorLimits) []Factor {
	var precip, cloud, wind, relTemp, hottest *float64
	thunder, rain := 0.0, 0.0
	var wrongLight *float64
	for _, o := range obs {
		precip = maxPtr(precip, o.PrecipProbabilityPct)
		cloud = maxPtr(cloud, o.CloudCoverPct)
		wind = maxPtr(wind, &o.WindMph)
		hottest = maxPtr(hottest, &o.TemperatureF)
		if relTemp == nil || o.RelativeTempF < *relTemp {
			v := o.RelativeTempF
			relTemp = &v
		}
		if o.Conditions.Thunderstorm {
			thunder = 1
		}
		if rainBlocks(o.Conditions, l.Rain) {
			rain = 1
		}
		if o.TimeOfDay != TimeUnknown {
			if wrongLight == nil {
				wrongLight = new(float64)
			}
			if !lightFits(o.TimeOfDay, l.Light) {
				*wrongLight++
			}
		}
	}
	var thunderPtr, rainPtr *float64
	if len(obs) > 0 {
		thunderPtr, rainPtr = &thunder, &rain
	}

	cloudWeight := 3.0
	if l.CloudRequired {
		cloudWeight = 10
	}
	factors := []Factor{
		{Name: "precipitation", Value: precip, Unit: "%", Required: true, Weight: 10,
			Check: func(v float64) bool { return v <= l.MaxPrecipPct }},
		{Name: "thunderstorm", Value: thunderPtr, Required: true, Weight: 10,
			Check: func(v float64) bool { return v == 0 }},
	}
	if l.Rain != RainAny {
		factors = append(factors, Factor{Name: "rain", Value: rainPtr, Required: true, Weight: 8,
			Check: func(v float64) bool { return v == 0 }})
	}
	switch l.Light {
	case LightDarkness:
		factors = append(factors, Factor{Name: "darkness", Value: wrongLight, Unit: " h", Required: true, Weight: 10,
			Check: func(v float64) bool { return v == 0 }})
	case LightDaylight:
		factors = append(factors, Factor{Name: "daylight", Value: wrongLight, Unit: " h", Required: true, Weight: 10,
			Check: func(v float64) bool { return v == 0 }})
	}
	factors = append(factors,
		Factor{Name: "wind", Value: wind, Unit: " mph", Weight: 7,
			Check: func(v float64) bool { return v <= l.MaxWindMph }},
		Factor{Name: "relative temperature", Value: relTemp, Unit: "°F", Weight: 5,
			Check: func(v float64) bool { return v >= l.MinRelativeTempF }},
	)
	if l.MaxTempF > 0 {
		factors = append(factors, Factor{Name: "heat", Value: hottest, Unit: "°F", Weight: 5,
			Check: func(v float64) bool { return v <= l.MaxTempF }})
	}
	return append(factors, Factor{Name: "cloud cover", Value: cloud, Unit: "%", Required: l.CloudRequired, Weight: cloudWeight,
		Check: func(v float64) bool { return v <= l.MaxCloudPct }})
}

func rainBlocks(f ConditionFlags, t RainTolerance) bool {
	switch t {
	case RainLightOnly:
		return f.Snow || (f.Rain && !f.Light && !f.Slight && !f.Chance)
	case RainNone:
		return f.Snow || f.Rain
	}
	return false
}

func lightFits(tod TimeOfDay, need LightNeed) bool {
	switch need {
	case LightDaylight:
		return tod == TimeDay
	case LightDarkness:
		return tod == TimeNight
	}
	return true
}

// TimeSlot is a contiguous run of hours, [Start, End).
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Score float64   `json:"score"`
}

// BestSlot finds the best run of consecutive hours that are each a GO on
// their own. Runs rank by mean hourly score, then length, then start time.
// It reports false when no hour is a GO.
func BestSlot(obs []HourlyObservation, l OutdoorLimits, threshold float64) (TimeSlot, bool) {
	var best, cur TimeSlot
	var found bool
	var sum float64
	n := 0

	flush := func() {
		if n == 0 {
			return
		}
		cur.Score = sum / float64(n)
		if !found || betterSlot(cur, best) {
			best, found = cur, true
		}
		n, sum = 0, 0
	}

	for i, o := range obs {
		d := Score(OutdoorFactors(obs[i:i+1], l), threshold)
		if d.Verdict != VerdictGo {
			flush()
			continue
		}
		if n > 0 && !o.Time.Equal(cur.End) {
			flush()
		}
		if n == 0 {
			cur.Start = o.Time
		}
		cur.End = o.Time.Add(time.Hour)
		sum += d.Score
		n++
	}
	flush()
	return best, found
}

func betterSlot(a, b TimeSlot) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if da, db := a.End.Sub(a.Start), b.End.Sub(b.Start); da != db {
		return da > db
	}
	return a.Start.Before(b.Start)
}

func maxPtr(cur, v *float64) *float64 {
	if v == nil {
		return cur
	}
	if cur == nil || *v > *cur {
		x := *v
		return &x
	}
	return cur
}
