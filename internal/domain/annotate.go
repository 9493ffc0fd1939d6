package domain

import "time"

// AnnotateConfig is the run-invariant configuration of Annotate.
type AnnotateConfig struct {
	DawnMinutes int
	DuskMinutes int
	Render      RenderOptions
	Delimiters  Delimiters
	GearRules   []GearRule

	// DecisionLimits apply to events matching none of Activities.
	DecisionLimits    OutdoorLimits
	DecisionThreshold float64
	Activities        []Activity
}

// AnnotateInput is everything Annotate needs for one event.
type AnnotateInput struct {
	Event    Event
	Forecast Forecast
	Solar    SolarLookup
	// WithDecision adds a go/no-go section to the description.
	WithDecision bool
	// Now stamps the "Updated:" line; the zero value uses the package clock.
	Now time.Time
}

// AnnotateResult carries the merged text and what it was built from.
type AnnotateResult struct {
	Title        string
	Description  string
	Observations []HourlyObservation
	Gear         []GearPick
	Decision     *Decision
}

// Annotate maps an event and its forecast to the updated title and
// description. It returns ErrNoMatchingForecastHour when the forecast does
// not overlap the event.
func Annotate(in AnnotateInput, cfg AnnotateConfig) (AnnotateResult, error) {
	hours := EventHours(in.Event.Start, in.Event.End)
	tods := ClassifySpan(hours, in.Solar, cfg.DawnMinutes, cfg.DuskMinutes)

	obs, err := BuildObservations(hours, tods, in.Forecast)
	if err != nil {
		return AnnotateResult{}, err
	}

	res := AnnotateResult{
		Observations: obs,
		Gear:         SelectGearForSpan(cfg.GearRules, obs),
	}

	state := EventTextState{
		Title:       in.Event.Title,
		Description: in.Event.Description,
		Delimiters:  cfg.Delimiters,
	}

	sections := []string{HourLines(obs, cfg.Render), GearLines(res.Gear)}
	if in.WithDecision {
		d := Decide(obs, state.UserTitle(), cfg)
		res.Decision = &d
		sections = append(sections, DecisionLines(d))
	}

	now := in.Now
	if now.IsZero() {
		now = clock.Now()
	}
	now = now.In(in.Event.Start.Location())

	titleSuffix := TitleSummary(obs)
	if res.Decision != nil {
		titleSuffix = verdictGlyph(res.Decision.Verdict) + " " + titleSuffix
	}
	res.Title = MergeTitle(state, titleSuffix)
	res.Description = MergeDescription(state,
		DescriptionSuffix(sections, cfg.Delimiters.Description, now, in.Forecast.Provider))
	return res, nil
}

// Decide scores obs against the activity matching title, or the general
// limits when none does. A best slot is attached when it covers less than
// the whole event.
func Decide(obs []HourlyObservation, title string, cfg AnnotateConfig) Decision {
	limits := cfg.DecisionLimits
	act, matched := MatchActivity(cfg.Activities, title)
	if matched {
		limits = act.Limits
	}

	d := Score(OutdoorFactors(obs, limits), cfg.DecisionThreshold)
	if matched {
		d.Activity = act.Name
	}
	if slot, ok := BestSlot(obs, limits, cfg.DecisionThreshold); ok && len(obs) > 0 {
		span := obs[len(obs)-1].Time.Add(time.Hour).Sub(obs[0].Time)
		if slot.End.Sub(slot.Start) < span {
			d.BestSlot = &slot
		}
	}
	return d
}

func verdictGlyph(v Verdict) string {
	switch v {
	case VerdictGo:
		return "✅"
	case VerdictNoGo:
		return "⛔"
	default:
		return "⚠️"
	}
}
