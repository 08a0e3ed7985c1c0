package goap

import "github.com/talgya/mini-world/internal/character"

// DecayNeeds applies one tick of needs drift (Section 4.H.1): hunger and
// thirst always drain at NeedDrop; socialization drains at SocialDrop when
// another live listener shares the room, or gains SocialSimTick when the
// NPC is alone (ambient self-occupation per Section 6.5's "socialization
// gain per tick when alone"); sleep refills at SleepRefill while sleeping,
// else drains at SleepDrop. All needs clamp to [0, 100].
func DecayNeeds(sheet *character.CharacterSheet, cfg Config, sleeping, alone bool) {
	sheet.Needs.Hunger -= cfg.NeedDrop
	sheet.Needs.Thirst -= cfg.NeedDrop

	if alone {
		sheet.Needs.Socialization += cfg.SocialSimTick
	} else {
		sheet.Needs.Socialization -= cfg.SocialDrop
	}

	if sleeping {
		sheet.Needs.Sleep += cfg.SleepRefill
	} else {
		sheet.Needs.Sleep -= cfg.SleepDrop
	}

	sheet.Needs.Clamp()
}

// RegenAP regenerates action points toward ApMax by 1 per tick, clamped
// (Section 4.H.1).
func RegenAP(sheet *character.CharacterSheet, cfg Config) {
	sheet.Planner.ActionPoints++
	if sheet.Planner.ActionPoints > cfg.APMax {
		sheet.Planner.ActionPoints = cfg.APMax
	}
	if sheet.Planner.ActionPoints < 0 {
		sheet.Planner.ActionPoints = 0
	}
}

// MostUnsatisfiedNeed returns the name of the lowest-scoring core need
// ("hunger", "thirst", "socialization", "sleep"), mirroring the teacher's
// agents.NeedsState.Priority() threshold-based selection (internal/
// agents/needs.go), generalized from the teacher's 6-need vector to this
// domain's 4.
func MostUnsatisfiedNeed(sheet *character.CharacterSheet) (name string, value float64) {
	name, value = "hunger", sheet.Needs.Hunger
	if sheet.Needs.Thirst < value {
		name, value = "thirst", sheet.Needs.Thirst
	}
	if sheet.Needs.Socialization < value {
		name, value = "socialization", sheet.Needs.Socialization
	}
	if sheet.Needs.Sleep < value {
		name, value = "sleep", sheet.Needs.Sleep
	}
	return name, value
}
