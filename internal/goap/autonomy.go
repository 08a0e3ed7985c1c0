package goap

import (
	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/model"
)

// Candidate is a scored autonomy-override proposal (Section 4.H.2).
type Candidate struct {
	Action   character.ActionRecord
	Priority int
}

// Override computes the highest-priority autonomy candidate for sheet
// given the objects present in room, per the Section 4.H.2 heuristic
// table. ok is false when no heuristic fires.
func Override(sheet *character.CharacterSheet, room *model.Room) (Candidate, bool) {
	var best Candidate
	found := false

	if sheet.Personality.Responsibility < 30 && sheet.Extended.WealthDesire > 70 {
		if target, ok := mostValuableUnowned(room); ok {
			c := Candidate{
				Action:   character.ActionRecord{Tool: "claim", Args: map[string]any{"object_uuid": string(target.UUID)}},
				Priority: 80,
			}
			if !found || c.Priority > best.Priority {
				best, found = c, true
			}
		}
	}

	if sheet.Extended.Safety < 20 && perceivesThreat(room) {
		if name, ok := unexploredExit(room); ok {
			c := Candidate{
				Action:   character.ActionRecord{Tool: "move_through", Args: map[string]any{"name": name}},
				Priority: 90,
			}
			if !found || c.Priority > best.Priority {
				best, found = c, true
			}
		}
	}

	if sheet.Personality.Curiosity > 70 {
		if name, ok := unexploredExit(room); ok {
			c := Candidate{
				Action:   character.ActionRecord{Tool: "move_through", Args: map[string]any{"name": name}},
				Priority: 80,
			}
			if !found || c.Priority > best.Priority {
				best, found = c, true
			}
		}
	}

	return best, found
}

// mostValuableUnowned returns the highest-"value"-tagged unowned object in
// room. Value is read from a "Value: N" tag, defaulting objects without
// one to 0 (never chosen over a valued object, but still eligible if
// nothing else is present).
func mostValuableUnowned(room *model.Room) (*model.Object, bool) {
	var best *model.Object
	bestValue := -1
	for _, o := range room.Objects {
		if o.OwnerUserID != "" || o.HasTag("Immovable") {
			continue
		}
		v, _ := affordanceValue(o.Tags, "value")
		if v > bestValue {
			best, bestValue = o, v
		}
	}
	return best, best != nil
}

// perceivesThreat reports whether room contains an object tagged "threat"
// — the minimal hook the spec leaves to implementation discretion for
// "a threat is perceived".
func perceivesThreat(room *model.Room) bool {
	for _, o := range room.Objects {
		if o.HasTag("threat") {
			return true
		}
	}
	return false
}

// unexploredExit returns the name of a door worth investigating. Since
// per-NPC exploration history isn't part of the persisted schema, every
// door present counts as unexplored, and the alphabetically first door
// name is returned so the choice is deterministic — room doors are the
// only "exits" the domain model exposes.
func unexploredExit(room *model.Room) (string, bool) {
	best, found := "", false
	for name := range room.Doors {
		if !found || name < best {
			best, found = name, true
		}
	}
	return best, found
}
