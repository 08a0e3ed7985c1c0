package goap

import (
	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/llmadapter"
	"github.com/talgya/mini-world/internal/model"
)

// GenerateOfflinePlan implements the Section 4.H.3 deterministic offline
// path: act on the most unsatisfied need. Always available; never touches
// the network.
func GenerateOfflinePlan(sheet *character.CharacterSheet, room *model.Room, npcUUID model.UUID) []character.ActionRecord {
	need, _ := MostUnsatisfiedNeed(sheet)
	switch need {
	case "hunger":
		return planConsume(sheet, room, "edible")
	case "thirst":
		return planConsume(sheet, room, "drinkable")
	case "socialization":
		return planSocialize(room)
	case "sleep":
		return planSleep(sheet, room, npcUUID)
	default:
		return []character.ActionRecord{{Tool: "do_nothing", Args: map[string]any{}}}
	}
}

func planConsume(sheet *character.CharacterSheet, room *model.Room, affordance string) []character.ActionRecord {
	for _, o := range sheet.Inventory {
		if o != nil {
			if _, ok := affordanceValue(o.Tags, affordance); ok {
				return []character.ActionRecord{{Tool: "consume_object", Args: map[string]any{"object_uuid": string(o.UUID)}}}
			}
		}
	}
	for _, o := range room.Objects {
		if _, ok := affordanceValue(o.Tags, affordance); ok {
			return []character.ActionRecord{
				{Tool: "get_object", Args: map[string]any{"object_name": o.Name}},
				{Tool: "consume_object", Args: map[string]any{"object_uuid": string(o.UUID)}},
			}
		}
	}
	return []character.ActionRecord{{Tool: "do_nothing", Args: map[string]any{}}}
}

func planSocialize(room *model.Room) []character.ActionRecord {
	if len(room.Players) > 0 || len(room.NPCs) > 1 {
		return []character.ActionRecord{{Tool: "emote", Args: map[string]any{"message": "strikes up a conversation."}}}
	}
	return []character.ActionRecord{{Tool: "emote", Args: map[string]any{}}}
}

func planSleep(sheet *character.CharacterSheet, room *model.Room, npcUUID model.UUID) []character.ActionRecord {
	for _, o := range room.Objects {
		if o.HasTag("bed") && o.OwnerUserID == string(npcUUID) {
			return []character.ActionRecord{{Tool: "sleep", Args: map[string]any{"bed_uuid": string(o.UUID)}}}
		}
	}
	for _, o := range room.Objects {
		if o.HasTag("bed") && o.OwnerUserID == "" {
			return []character.ActionRecord{
				{Tool: "claim", Args: map[string]any{"object_uuid": string(o.UUID)}},
				{Tool: "sleep", Args: map[string]any{"bed_uuid": string(o.UUID)}},
			}
		}
	}
	return []character.ActionRecord{{Tool: "do_nothing", Args: map[string]any{}}}
}

// Generator produces text from a prompt (Section 4.L), satisfied by
// *llmadapter.Adapter.
type Generator interface {
	Generate(prompt string, maxTokens int) (string, error)
}

// rawAction mirrors the JSON shape an AI plan response uses, decoded
// before validation into character.ActionRecord.
type rawAction struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// GeneratePlan implements the full Section 4.H.3 dispatch: the AI path is
// taken only if enabled, gen is configured, and the room holds a live
// player; any failure (parse, timeout, oversize) falls back to offline.
// This is also where Section 8.1 property 8 ("AI-off gate") is enforced:
// when advancedEnabled is false, gen.Generate is never called.
func GeneratePlan(sheet *character.CharacterSheet, room *model.Room, npcUUID model.UUID, worldName string, advancedEnabled bool, gen Generator) []character.ActionRecord {
	needName, needVal := MostUnsatisfiedNeed(sheet)
	if needVal >= 50 {
		return nil
	}

	if advancedEnabled && gen != nil && len(room.Players) > 0 {
		prompt := buildPrompt(sheet, room, worldName, needName)
		text, err := gen.Generate(prompt, 400)
		if err == nil {
			if plan, ok := parsePlan(text); ok {
				return plan
			}
		}
		// parse failure, timeout, or oversize response: fall through to
		// the offline planner so a misbehaving adapter never blocks
		// planning.
	}

	return GenerateOfflinePlan(sheet, room, npcUUID)
}

func buildPrompt(sheet *character.CharacterSheet, room *model.Room, worldName, needName string) string {
	return "World: " + worldName + ". NPC needs most: " + needName +
		". Room: " + room.Description + ". Produce up to 4 actions as a JSON array of {tool, args}."
}

// parsePlan decodes up to 4 action records from an AI response, validating
// each tool name against the Section 4.H.4 permitted set.
func parsePlan(text string) ([]character.ActionRecord, bool) {
	var raws []rawAction
	if err := llmadapter.ExtractJSON(text, &raws); err != nil {
		return nil, false
	}
	if len(raws) > 4 {
		raws = raws[:4]
	}
	plan := make([]character.ActionRecord, 0, len(raws))
	for _, r := range raws {
		if !ValidTool(r.Tool) {
			continue
		}
		args := r.Args
		if args == nil {
			args = map[string]any{}
		}
		plan = append(plan, character.ActionRecord{Tool: r.Tool, Args: args})
	}
	if len(plan) == 0 {
		return nil, false
	}
	return plan, true
}

// ValidTool reports whether tool is one of the Section 4.H.4 permitted
// action tools.
func ValidTool(tool string) bool {
	switch tool {
	case "get_object", "consume_object", "emote", "claim", "unclaim", "sleep", "do_nothing", "move_through":
		return true
	default:
		return false
	}
}
