package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RenderOptions tunes the optional notes in hour lines.
type RenderOptions struct {
	HumidDewpointMinF float64
	LightWindMaxMph   float64
}

// ConditionEmoji picks a glyph for the flags, using time of day for clear
// and partly cloudy skies.
func ConditionEmoji(f ConditionFlags, tod TimeOfDay) string {
	switch {
	case f.Thunderstorm:
		return "⛈️"
	case f.Snow:
		return "🌨️"
	case f.Rain && (f.Light || f.Chance || f.Slight):
		return "🌦️"
	case f.Rain:
		return "🌧️"
	case f.Cloudy && f.Light:
		if tod == TimeNight {
			return "☁️"
		}
		return "⛅"
	case f.Cloudy:
		return "☁️"
	}
	switch tod {
	case TimeNight:
		return "🌙"
	case TimeDawn, TimeDusk:
		return "🌅"
	default:
		return "☀️"
	}
}

// TitleSummary is the compact emoji summary for the title suffix: the
// glyph of the worst hour, the temperature range, and the coldest relative
// temperature when it differs.
func TitleSummary(obs []HourlyObservation) string {
	if len(obs) == 0 {
		return ""
	}
	worst := obs[0]
	lo, hi := obs[0].TemperatureF, obs[0].TemperatureF
	feels := obs[0].RelativeTempF
	for _, o := range obs[1:] {
		if severity(o.Conditions) > severity(worst.Conditions) {
			worst = o
		}
		lo, hi = min(lo, o.TemperatureF), max(hi, o.TemperatureF)
		feels = min(feels, o.RelativeTempF)
	}

	var b strings.Builder
	b.WriteString(ConditionEmoji(worst.Conditions, worst.TimeOfDay))
	b.WriteByte(' ')
	if roundF(lo) == roundF(hi) {
		fmt.Fprintf(&b, "%d°", roundF(lo))
	} else {
		fmt.Fprintf(&b, "%d–%d°", roundF(lo), roundF(hi))
	}
	if roundF(feels) != roundF(lo) {
		fmt.Fprintf(&b, " (feels %d°)", roundF(feels))
	}
	return b.String()
}

// HourLines renders one line per observation.
func HourLines(obs []HourlyObservation, opts RenderOptions) string {
	lines := make([]string, 0, len(obs))
	for _, o := range obs {
		lines = append(lines, hourLine(o, opts))
	}
	return strings.Join(lines, "\n")
}

func hourLine(o HourlyObservation, opts RenderOptions) string {
	parts := []string{
		fmt.Sprintf("%s %s %d°F (feels %d°F)", o.Time.Format("3 PM"),
			ConditionEmoji(o.Conditions, o.TimeOfDay), roundF(o.TemperatureF), roundF(o.RelativeTempF)),
	}
	if o.RawCondition != "" {
		parts = append(parts, o.RawCondition)
	}
	wind := fmt.Sprintf("wind %d mph", roundF(o.WindMph))
	if opts.LightWindMaxMph > 0 && o.WindMph > opts.LightWindMaxMph {
		wind += " 💨"
	}
	parts = append(parts, wind)
	if o.PrecipProbabilityPct != nil && *o.PrecipProbabilityPct > 0 {
		parts = append(parts, fmt.Sprintf("%d%% precip", roundF(*o.PrecipProbabilityPct)))
	}
	if o.DewpointF != nil && opts.HumidDewpointMinF > 0 && *o.DewpointF >= opts.HumidDewpointMinF {
		parts = append(parts, "humid")
	}
	return strings.Join(parts, " · ")
}

// GearLines renders the gear block.
func GearLines(picks []GearPick) string {
	if len(picks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Gear:")
	for _, p := range picks {
		fmt.Fprintf(&b, "\n- %s: %s", strings.ReplaceAll(string(p.Category), "_", " "), p.Item)
	}
	return b.String()
}

// DecisionLines renders a verdict with its failing factors.
func DecisionLines(d Decision) string {
	var b strings.Builder
	b.WriteString("Go/No-Go")
	if d.Activity != "" {
		fmt.Fprintf(&b, " (%s)", strings.ReplaceAll(d.Activity, "_", " "))
	}
	fmt.Fprintf(&b, ": %s (score %.0f, confidence %.0f%%)", d.Verdict, d.Score, d.Confidence*100)
	for _, f := range d.Factors {
		if f.Status != FactorFail {
			continue
		}
		fmt.Fprintf(&b, "\n- %s: %s%s", f.Name, formatValue(f.Value), f.Unit)
	}
	if len(d.BlockingFactors) > 0 {
		b.WriteString("\n" + d.Summary)
	}
	if d.BestSlot != nil {
		fmt.Fprintf(&b, "\nBest window: %s–%s (score %.0f)",
			d.BestSlot.Start.Format("3 PM"), d.BestSlot.End.Format("3 PM"), d.BestSlot.Score)
	}
	return b.String()
}

// DescriptionSuffix assembles the machine block that follows the
// description delimiter:
//
//	\n<section>\n\n<section>...\n<delim>\nUpdated: <ts>\nSource: <provider>
func DescriptionSuffix(sections []string, delim string, updated time.Time, provider string) string {
	var kept []string
	for _, s := range sections {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return "\n" + strings.Join(kept, "\n\n") +
		"\n" + delim +
		"\nUpdated: " + updated.Format(StampLayout) +
		"\nSource: " + provider
}

// severity orders flags for picking the headline hour.
func severity(f ConditionFlags) int {
	switch {
	case f.Thunderstorm:
		return 5
	case f.Snow:
		return 4
	case f.Rain && f.Heavy:
		return 3
	case f.Rain:
		return 2
	case f.Cloudy:
		return 1
	}
	return 0
}

func formatValue(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", roundF(*v))
}

func roundF(v float64) int {
	return int(math.Round(v))
}
