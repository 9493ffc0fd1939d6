package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectGear_HigherPriorityWins(t *testing.T) {
	light := GearRule{Category: GearHands, Item: "Light Gloves", MaxTempF: degF(50), Priority: 1}
	warm := GearRule{Category: GearHands, Item: "Warm Gloves", MaxTempF: degF(45), Priority: 5}
	snap := GearSnapshot{TemperatureF: 40, RelativeTempF: 40}

	for name, rules := range map[string][]GearRule{
		"low first":  {light, warm},
		"high first": {warm, light},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, []GearPick{{Category: GearHands, Item: "Warm Gloves"}}, SelectGear(rules, snap))
		})
	}
}

func TestSelectGear_EqualPriorityFirstDefinedWins(t *testing.T) {
	rules := []GearRule{
		{Category: GearHead, Item: "Beanie", Priority: 3},
		{Category: GearHead, Item: "Headband", Priority: 3},
	}
	assert.Equal(t, "Beanie", SelectGear(rules, GearSnapshot{TemperatureF: 30})[0].Item)

	rules[0], rules[1] = rules[1], rules[0]
	assert.Equal(t, "Headband", SelectGear(rules, GearSnapshot{TemperatureF: 30})[0].Item)
}

func TestSelectGear_OnePerCategoryInSlotOrder(t *testing.T) {
	rules := []GearRule{
		{Category: GearLegs, Item: "Shorts", MinTempF: degF(55)},
		{Category: GearHead, Item: "Cap"},
		{Category: GearHead, Item: "Visor"},
		{Category: GearHands, Item: "Gloves", MaxTempF: degF(40)},
		{Category: "pet", Item: "Dog Jacket"},
	}
	got := SelectGear(rules, GearSnapshot{TemperatureF: 70})

	assert.Equal(t, []GearPick{
		{Category: GearHead, Item: "Cap"},
		{Category: GearLegs, Item: "Shorts"},
		{Category: "pet", Item: "Dog Jacket"},
	}, got)
}

func TestGearRule_Matches(t *testing.T) {
	wind := degF(13)
	tests := []struct {
		name string
		rule GearRule
		snap GearSnapshot
		want bool
	}{
		{"inside bounds", GearRule{MinTempF: degF(40), MaxTempF: degF(50)}, GearSnapshot{TemperatureF: 45}, true},
		{"bounds are inclusive", GearRule{MinTempF: degF(40), MaxTempF: degF(50)}, GearSnapshot{TemperatureF: 50}, true},
		{"above max", GearRule{MaxTempF: degF(50)}, GearSnapshot{TemperatureF: 51}, false},
		{"below min", GearRule{MinTempF: degF(40)}, GearSnapshot{TemperatureF: 39}, false},
		{"feels like uses relative", GearRule{MaxTempF: degF(40), FeelsLike: true}, GearSnapshot{TemperatureF: 45, RelativeTempF: 38}, true},
		{"requires rain without rain", GearRule{Condition: GearCondition{RequiresRain: true}}, GearSnapshot{}, false},
		{"thunderstorm counts as rain", GearRule{Condition: GearCondition{RequiresRain: true}}, GearSnapshot{Conditions: ConditionFlags{Thunderstorm: true}}, true},
		{"requires snow", GearRule{Condition: GearCondition{RequiresSnow: true}}, GearSnapshot{Conditions: ConditionFlags{Snow: true}}, true},
		{"night only at night", GearRule{Condition: GearCondition{RequiresNight: true}}, GearSnapshot{Night: true}, true},
		{"dry only when wet", GearRule{Condition: GearCondition{DryOnly: true}}, GearSnapshot{Wet: true}, false},
		{"min wind not reached", GearRule{Condition: GearCondition{MinWindMph: wind}}, GearSnapshot{WindMph: 12}, false},
		{"min wind reached", GearRule{Condition: GearCondition{MinWindMph: wind}}, GearSnapshot{WindMph: 13}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Matches(tt.snap))
		})
	}
}

func TestSnapshotForSpan(t *testing.T) {
	obs := []HourlyObservation{
		{TemperatureF: 50, RelativeTempF: 55, WindMph: 4, TimeOfDay: TimeDay},
		{TemperatureF: 44, RelativeTempF: 38, WindMph: 12, TimeOfDay: TimeDusk, Wet: true, Conditions: ConditionFlags{Rain: true}},
		{TemperatureF: 46, RelativeTempF: 40, WindMph: 8, TimeOfDay: TimeNight},
	}
	s := SnapshotForSpan(obs)

	assert.Equal(t, 44.0, s.TemperatureF)
	assert.Equal(t, 38.0, s.RelativeTempF)
	assert.Equal(t, 12.0, s.WindMph)
	assert.True(t, s.Wet)
	assert.True(t, s.Night)
	assert.True(t, s.Conditions.Rain)
}

func TestDefaultGearRules_ColdWetRun(t *testing.T) {
	obs := []HourlyObservation{
		{TemperatureF: 38, RelativeTempF: 28, WindMph: 6, TimeOfDay: TimeNight, Wet: true, Conditions: ConditionFlags{Rain: true}},
	}
	picks := SelectGearForSpan(DefaultGearRules(), obs)

	byCategory := make(map[GearCategory]string)
	for _, p := range picks {
		byCategory[p.Category] = p.Item
	}
	assert.Equal(t, "Beanie", byCategory[GearHead])
	assert.Equal(t, "Rain Jacket", byCategory[GearTorsoOuter])
	assert.Equal(t, "Warm Gloves", byCategory[GearHands])
	assert.Equal(t, "Thermal Tights", byCategory[GearLegs])
	assert.Equal(t, "Reflective Vest + Light", byCategory[GearSafety])
	assert.NotContains(t, byCategory, GearAccessories)
}
