package domain

import (
	"slices"
	"strings"
	"unicode"
)

// RainTolerance is how much falling precipitation an activity accepts.
type RainTolerance int

const (
	// RainAny leaves rain to the precipitation probability factor.
	RainAny RainTolerance = iota
	// RainLightOnly accepts light, slight, or chance-of rain but no snow.
	RainLightOnly
	// RainNone rejects any rain or snow.
	RainNone
)

// LightNeed is the sky brightness an activity requires.
type LightNeed int

const (
	LightAny LightNeed = iota
	LightDaylight
	LightDarkness
)

// Activity is a named factor profile for go/no-go decisions. An event is
// matched to an activity when a word of its title equals one of Keywords.
type Activity struct {
	Name     string
	Icon     string
	Keywords []string
	Limits   OutdoorLimits
}

// DefaultActivities returns the built-in profiles.
func DefaultActivities() []Activity {
	return []Activity{
		{
			Name:     "running",
			Icon:     "🏃",
			Keywords: []string{"run", "running", "jog", "jogging", "5k", "10k", "marathon"},
			Limits: OutdoorLimits{
				MaxPrecipPct:     50,
				MaxWindMph:       34,
				MinRelativeTempF: 5,
				MaxTempF:         95,
				MaxCloudPct:      100,
				Rain:             RainLightOnly,
			},
		},
		{
			Name:     "cycling",
			Icon:     "🚴",
			Keywords: []string{"bike", "biking", "cycling", "bicycle", "ride"},
			Limits: OutdoorLimits{
				MaxPrecipPct:     30,
				MaxWindMph:       27,
				MinRelativeTempF: 23,
				MaxTempF:         100,
				MaxCloudPct:      100,
				Rain:             RainNone,
			},
		},
		{
			Name:     "astronomy",
			Icon:     "🔭",
			Keywords: []string{"astronomy", "observing", "telescope", "stargazing", "astrophotography"},
			Limits: OutdoorLimits{
				MaxPrecipPct:     10,
				MaxWindMph:       18,
				MinRelativeTempF: -4,
				MaxTempF:         95,
				MaxCloudPct:      30,
				CloudRequired:    true,
				Rain:             RainNone,
				Light:            LightDarkness,
			},
		},
		{
			Name:     "solar_observation",
			Icon:     "☀️",
			Keywords: []string{"solar", "sun", "h-alpha"},
			Limits: OutdoorLimits{
				MaxPrecipPct:     100,
				MaxWindMph:       13,
				MinRelativeTempF: 32,
				MaxTempF:         100,
				MaxCloudPct:      20,
				CloudRequired:    true,
				Light:            LightDaylight,
			},
		},
	}
}

// ActivitiesNamed returns the built-in profiles with the given names, in
// the order given. Unknown names are skipped.
func ActivitiesNamed(names []string) []Activity {
	all := DefaultActivities()
	out := make([]Activity, 0, len(names))
	for _, n := range names {
		i := slices.IndexFunc(all, func(a Activity) bool { return a.Name == n })
		if i >= 0 {
			out = append(out, all[i])
		}
	}
	return out
}

// MatchActivity returns the first activity with a keyword among the words
// of title.
func MatchActivity(activities []Activity, title string) (Activity, bool) {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	for _, a := range activities {
		for _, k := range a.Keywords {
			if slices.Contains(words, k) {
				return a, true
			}
		}
	}
	return Activity{}, false
}
