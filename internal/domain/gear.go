package domain

import (
	"cmp"
	"slices"
)

// GearCategory is a body-part slot. Each slot receives at most one item.
type GearCategory string

const (
	GearHead        GearCategory = "head"
	GearFace        GearCategory = "face"
	GearTorsoBase   GearCategory = "torso_base"
	GearTorsoMid    GearCategory = "torso_mid"
	GearTorsoOuter  GearCategory = "torso_outer"
	GearHands       GearCategory = "hands"
	GearLegs        GearCategory = "legs"
	GearFeet        GearCategory = "feet"
	GearAccessories GearCategory = "accessories"
	GearSafety      GearCategory = "safety"
)

// GearCategories lists the slots in output order, head to toe.
var GearCategories = []GearCategory{
	GearHead, GearFace, GearTorsoBase, GearTorsoMid, GearTorsoOuter,
	GearHands, GearLegs, GearFeet, GearAccessories, GearSafety,
}

// GearCondition is the optional weather predicate of a rule. The zero value
// always holds.
type GearCondition struct {
	RequiresRain  bool     `yaml:"requires_rain"`
	RequiresSnow  bool     `yaml:"requires_snow"`
	RequiresNight bool     `yaml:"requires_night"`
	DryOnly       bool     `yaml:"dry_only"`
	MinWindMph    *float64 `yaml:"min_wind_mph"`
}

// Holds reports whether the snapshot satisfies the condition.
func (c GearCondition) Holds(s GearSnapshot) bool {
	if c.RequiresRain && !(s.Conditions.Rain || s.Conditions.Thunderstorm) {
		return false
	}
	if c.RequiresSnow && !s.Conditions.Snow {
		return false
	}
	if c.RequiresNight && !s.Night {
		return false
	}
	if c.DryOnly && s.Wet {
		return false
	}
	if c.MinWindMph != nil && s.WindMph < *c.MinWindMph {
		return false
	}
	return true
}

// GearRule recommends Item for Category when the temperature is within
// [MinTempF, MaxTempF] (nil bounds are open) and Condition holds. Higher
// Priority rules are tried first.
type GearRule struct {
	Category  GearCategory  `yaml:"category" validate:"required"`
	Item      string        `yaml:"item" validate:"required"`
	MinTempF  *float64      `yaml:"min_temp_f"`
	MaxTempF  *float64      `yaml:"max_temp_f"`
	FeelsLike bool          `yaml:"feels_like"` // compare relative temperature instead of actual
	Condition GearCondition `yaml:"condition"`
	Priority  int           `yaml:"priority"`
}

// Matches reports whether the rule applies to the snapshot.
func (r GearRule) Matches(s GearSnapshot) bool {
	t := s.TemperatureF
	if r.FeelsLike {
		t = s.RelativeTempF
	}
	if r.MinTempF != nil && t < *r.MinTempF {
		return false
	}
	if r.MaxTempF != nil && t > *r.MaxTempF {
		return false
	}
	return r.Condition.Holds(s)
}

// GearSnapshot is the weather a gear decision is made against.
type GearSnapshot struct {
	TemperatureF  float64
	RelativeTempF float64
	WindMph       float64
	Conditions    ConditionFlags
	Night         bool
	Wet           bool
}

// GearPick is one selected item.
type GearPick struct {
	Category GearCategory `json:"category"`
	Item     string       `json:"item"`
}

// SelectGear picks at most one item per category. Rules are tried in
// descending priority; on equal priority the one defined first wins. A
// category with no matching rule is simply absent from the result.
func SelectGear(rules []GearRule, s GearSnapshot) []GearPick {
	ordered := slices.Clone(rules)
	slices.SortStableFunc(ordered, func(a, b GearRule) int {
		return cmp.Compare(b.Priority, a.Priority)
	})

	chosen := make(map[GearCategory]string)
	for _, r := range ordered {
		if _, done := chosen[r.Category]; done {
			continue
		}
		if r.Matches(s) {
			chosen[r.Category] = r.Item
		}
	}

	picks := make([]GearPick, 0, len(chosen))
	for _, c := range GearCategories {
		if item, ok := chosen[c]; ok {
			picks = append(picks, GearPick{Category: c, Item: item})
			delete(chosen, c)
		}
	}
	// Categories outside the known set go last, in name order.
	rest := make([]GearCategory, 0, len(chosen))
	for c := range chosen {
		rest = append(rest, c)
	}
	slices.Sort(rest)
	for _, c := range rest {
		picks = append(picks, GearPick{Category: c, Item: chosen[c]})
	}
	return picks
}

// SnapshotForSpan reduces an event's observations to the worst case: the
// coldest temperatures, the strongest wind, and any precipitation or night.
func SnapshotForSpan(obs []HourlyObservation) GearSnapshot {
	if len(obs) == 0 {
		return GearSnapshot{}
	}
	s := GearSnapshot{
		TemperatureF:  obs[0].TemperatureF,
		RelativeTempF: obs[0].RelativeTempF,
	}
	for _, o := range obs {
		s.TemperatureF = min(s.TemperatureF, o.TemperatureF)
		s.RelativeTempF = min(s.RelativeTempF, o.RelativeTempF)
		s.WindMph = max(s.WindMph, o.WindMph)
		s.Wet = s.Wet || o.Wet
		s.Night = s.Night || o.TimeOfDay == TimeNight
		s.Conditions = mergeFlags(s.Conditions, o.Conditions)
	}
	return s
}

// SelectGearForSpan is SelectGear over SnapshotForSpan.
func SelectGearForSpan(rules []GearRule, obs []HourlyObservation) []GearPick {
	return SelectGear(rules, SnapshotForSpan(obs))
}

func mergeFlags(a, b ConditionFlags) ConditionFlags {
	return ConditionFlags{
		Rain:         a.Rain || b.Rain,
		Snow:         a.Snow || b.Snow,
		Cloudy:       a.Cloudy || b.Cloudy,
		Thunderstorm: a.Thunderstorm || b.Thunderstorm,
		Slight:       a.Slight || b.Slight,
		Chance:       a.Chance || b.Chance,
		Light:        a.Light || b.Light,
		Heavy:        a.Heavy || b.Heavy,
	}
}

func degF(f float64) *float64 { return &f }

// DefaultGearRules is a running table for temperate climates. Overlapping
// bands resolve colder-first through priority.
func DefaultGearRules() []GearRule {
	return []GearRule{
		{Category: GearHead, Item: "Beanie", MaxTempF: degF(40), FeelsLike: true, Priority: 8},
		{Category: GearHead, Item: "Ear Warmer", MinTempF: degF(32), MaxTempF: degF(50), FeelsLike: true, Priority: 7},
		{Category: GearHead, Item: "Running Cap", MinTempF: degF(59), Priority: 5},
		{Category: GearHead, Item: "Running Cap", Condition: GearCondition{RequiresRain: true}, Priority: 4},

		{Category: GearFace, Item: "Neck Gaiter", MaxTempF: degF(25), FeelsLike: true, Priority: 5},

		{Category: GearTorsoBase, Item: "Thermal Base Layer", MaxTempF: degF(40), FeelsLike: true, Priority: 9},
		{Category: GearTorsoBase, Item: "Long Sleeve", MinTempF: degF(40), MaxTempF: degF(55), FeelsLike: true, Priority: 8},
		{Category: GearTorsoBase, Item: "T-Shirt", MinTempF: degF(55), MaxTempF: degF(72), Priority: 7},
		{Category: GearTorsoBase, Item: "Singlet", MinTempF: degF(72), Priority: 6},

		{Category: GearTorsoMid, Item: "Fleece Midlayer", MaxTempF: degF(25), FeelsLike: true, Priority: 5},

		{Category: GearTorsoOuter, Item: "Rain Jacket", Condition: GearCondition{RequiresRain: true}, Priority: 9},
		{Category: GearTorsoOuter, Item: "Insulated Jacket", MaxTempF: degF(32), FeelsLike: true, Priority: 8},
		{Category: GearTorsoOuter, Item: "Wind Jacket", MaxTempF: degF(54), FeelsLike: true, Condition: GearCondition{MinWindMph: degF(13)}, Priority: 7},
		{Category: GearTorsoOuter, Item: "Light Vest", MaxTempF: degF(50), FeelsLike: true, Priority: 6},

		{Category: GearHands, Item: "Warm Gloves", MaxTempF: degF(32), FeelsLike: true, Priority: 8},
		{Category: GearHands, Item: "Light Gloves", MinTempF: degF(32), MaxTempF: degF(46), FeelsLike: true, Priority: 7},

		{Category: GearLegs, Item: "Thermal Tights", MaxTempF: degF(32), FeelsLike: true, Priority: 9},
		{Category: GearLegs, Item: "Full Tights", MaxTempF: degF(45), FeelsLike: true, Priority: 8},
		{Category: GearLegs, Item: "3/4 Tights", MinTempF: degF(45), MaxTempF: degF(55), Priority: 7},
		{Category: GearLegs, Item: "Shorts", MinTempF: degF(55), Priority: 6},

		{Category: GearFeet, Item: "Waterproof Shoes", Condition: GearCondition{RequiresSnow: true}, Priority: 6},
		{Category: GearFeet, Item: "Wool Socks", MaxTempF: degF(40), Priority: 5},

		{Category: GearAccessories, Item: "Sunglasses", MinTempF: degF(50), Condition: GearCondition{DryOnly: true}, Priority: 5},

		{Category: GearSafety, Item: "Reflective Vest + Light", Condition: GearCondition{RequiresNight: true}, Priority: 5},
	}
}
