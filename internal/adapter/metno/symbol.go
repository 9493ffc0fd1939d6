package metno

import "strings"

var symbolPhrases = map[string]string{
	"clearsky":     "Clear",
	"fair":         "Mostly Clear",
	"partlycloudy": "Partly Cloudy",
	"cloudy":       "Cloudy",
	"fog":          "Fog",

	"lightrain":        "Light Rain",
	"rain":             "Rain",
	"heavyrain":        "Heavy Rain",
	"lightrainshowers": "Light Rain Showers",
	"rainshowers":      "Rain Showers",
	"heavyrainshowers": "Heavy Rain Showers",

	"lightsleet":        "Light Sleet",
	"sleet":             "Sleet",
	"heavysleet":        "Heavy Sleet",
	"lightsleetshowers": "Light Sleet Showers",
	"sleetshowers":      "Sleet Showers",
	"heavysleetshowers": "Heavy Sleet Showers",

	"lightsnow":        "Light Snow",
	"snow":             "Snow",
	"heavysnow":        "Heavy Snow",
	"lightsnowshowers": "Light Snow Showers",
	"snowshowers":      "Snow Showers",
	"heavysnowshowers": "Heavy Snow Showers",

	"lightrainandthunder":        "Thunderstorms And Light Rain",
	"rainandthunder":             "Thunderstorms And Rain",
	"heavyrainandthunder":        "Thunderstorms And Heavy Rain",
	"lightrainshowersandthunder": "Thunderstorms And Light Rain Showers",
	"rainshowersandthunder":      "Thunderstorms And Rain Showers",
	"heavyrainshowersandthunder": "Thunderstorms And Heavy Rain Showers",
	"lightsleetandthunder":       "Thunderstorms And Light Sleet",
	"sleetandthunder":            "Thunderstorms And Sleet",
	"heavysleetandthunder":       "Thunderstorms And Heavy Sleet",
	"lightsnowandthunder":        "Thunderstorms And Light Snow",
	"snowandthunder":             "Thunderstorms And Snow",
	"heavysnowandthunder":        "Thunderstorms And Heavy Snow",
}

// ConditionFromSymbol turns a symbol_code such as "lightrainshowers_day"
// into condition text the domain parser understands. Unknown codes yield
// "", which parses as clear.
func ConditionFromSymbol(code string) string {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(code)), "_")
	if p, ok := symbolPhrases[base]; ok {
		return p
	}
	if strings.Contains(base, "thunder") {
		return "Thunderstorms"
	}
	return ""
}
