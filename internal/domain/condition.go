package domain

import (
	"regexp"
	"strings"
)

// ConditionFlags is the structured form of a free-text condition phrase.
type ConditionFlags struct {
	Rain         bool `json:"rain"`
	Snow         bool `json:"snow"`
	Cloudy       bool `json:"cloudy"`
	Thunderstorm bool `json:"thunderstorm"`
	Slight       bool `json:"slight"`
	Chance       bool `json:"chance"`
	Light        bool `json:"light"`
	Heavy        bool `json:"heavy"`
}

// Precipitating reports whether any precipitation flag is set.
func (f ConditionFlags) Precipitating() bool {
	return f.Rain || f.Snow || f.Thunderstorm
}

// Clear reports whether no primary condition was recognised.
func (f ConditionFlags) Clear() bool {
	return !f.Precipitating() && !f.Cloudy
}

// conditionRule is one row of the parser table. match sees an upper-cased
// clause.
type conditionRule struct {
	name     string
	match    func(clause string) bool
	apply    func(f *ConditionFlags)
	terminal bool // stop processing further clauses
}

var (
	slightWord  = hasWord("SLIGHT")
	chanceWords = hasWord("CHANCE", "LIKELY", "ISOLATED", "SCATTERED")
)

// Modifiers are orthogonal to the primary condition; every matching row
// applies. They match whole words so LIGHT never fires inside SLIGHT.
var modifierRules = []conditionRule{
	{
		name:  "slight chance",
		match: slightWord,
		apply: func(f *ConditionFlags) { f.Slight = true },
	},
	{
		name: "chance",
		match: func(c string) bool {
			return !slightWord(c) && chanceWords(c)
		},
		apply: func(f *ConditionFlags) { f.Chance = true },
	},
	{
		name:  "light",
		match: hasWord("LIGHT", "PARTIAL", "PARTIALLY", "PARTLY", "PATCHY", "SHALLOW"),
		apply: func(f *ConditionFlags) { f.Light = true },
	},
	{
		name:  "heavy",
		match: hasWord("HEAVY"),
		apply: func(f *ConditionFlags) { f.Heavy = true },
	},
}

// Primary conditions in precedence order; the first matching row wins for a clause.
var primaryRules = []conditionRule{
	{
		name:     "thunderstorm",
		match:    containsAny("THUNDER", "T-STORM", "TSTORM"),
		apply:    func(f *ConditionFlags) { f.Thunderstorm = true },
		terminal: true,
	},
	{
		name:  "snow",
		match: containsAny("SNOW", "HAIL", "ICE", "SLEET", "FLURRIES"),
		apply: func(f *ConditionFlags) { f.Snow = true },
	},
	{
		name:  "squalls",
		match: containsAny("SQUALL"),
		apply: func(f *ConditionFlags) { f.Rain, f.Heavy, f.Light = true, true, false },
	},
	{
		name:  "rain",
		match: containsAny("RAIN", "SHOWER"),
		apply: func(f *ConditionFlags) { f.Rain = true },
	},
	{
		name:  "drizzle",
		match: containsAny("DRIZZLE"),
		apply: func(f *ConditionFlags) { f.Rain, f.Light = true, true },
	},
	{
		name:  "fog",
		match: containsAny("FOG", "HAZE", "MIST", "SMOKE"),
		apply: func(f *ConditionFlags) { f.Cloudy = true },
	},
	{
		name:  "overcast",
		match: containsAny("OVERCAST"),
		apply: func(f *ConditionFlags) { f.Cloudy = true },
	},
	{
		name:  "cloudy",
		match: containsAny("CLOUD"),
		apply: func(f *ConditionFlags) { f.Cloudy = true },
	},
}

var clauseSeparator = regexp.MustCompile(`(?i)\s+(?:AND|THEN)\s+`)

// ParseCondition turns a phrase such as "Chance Of Showers And Patchy Fog"
// into flags. Clauses are processed in order against one shared set of flags,
// and a thunderstorm ends processing. Text matching no rule yields the zero
// value, which downstream code treats as clear.
func ParseCondition(text string) ConditionFlags {
	var f ConditionFlags
	for _, clause := range clauseSeparator.Split(strings.ToUpper(strings.TrimSpace(text)), -1) {
		if clause == "" {
			continue
		}
		for _, r := range modifierRules {
			if r.match(clause) {
				r.apply(&f)
			}
		}
		for _, r := range primaryRules {
			if !r.match(clause) {
				continue
			}
			r.apply(&f)
			if r.terminal {
				return f
			}
			break
		}
	}
	return f
}

func containsAny(words ...string) func(string) bool {
	return func(clause string) bool {
		for _, w := range words {
			if strings.Contains(clause, w) {
				return true
			}
		}
		return false
	}
}

// hasWord matches any of words as a whole word of the clause.
func hasWord(words ...string) func(string) bool {
	re := regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)\b`)
	return re.MatchString
}
