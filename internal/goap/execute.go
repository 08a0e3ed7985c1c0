package goap

import (
	"fmt"
	"math/rand"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/locks"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/mutate"
	"github.com/talgya/mini-world/internal/persist"
	"github.com/talgya/mini-world/internal/resolve"
)

// execResult is one executed action's broadcast text, if any, plus the
// NPC's room after the action — set only by execMoveThrough, so Tick can
// re-aim its loop variables at the NPC's actual current room before
// running any action still queued behind a move.
type execResult struct {
	Text   string
	RoomID string
}

// executeAction runs one action record (Section 4.H.4), returning text to
// broadcast to the room (empty if nothing to announce). Every action
// costs 1 AP regardless of outcome — the caller (Tick) is responsible for
// charging it, matching "each executed action costs 1 AP even on failure
// (prevents thrashing)".
func executeAction(doc *persist.Document, roomID string, room *model.Room, sheet *character.CharacterSheet, npcName string, npcUUID model.UUID, cfg Config, rng *rand.Rand, action character.ActionRecord) execResult {
	switch action.Tool {
	case "get_object":
		return execGetObject(doc, roomID, sheet, npcName, action)
	case "consume_object":
		return execConsumeObject(room, sheet, npcName, action)
	case "emote":
		return execEmote(sheet, cfg, npcName, action)
	case "claim":
		return execClaim(room, npcUUID, npcName, action)
	case "unclaim":
		return execUnclaim(room, npcUUID, npcName, action)
	case "sleep":
		return execSleep(room, sheet, npcUUID, cfg, action)
	case "move_through":
		return execMoveThrough(doc, roomID, room, npcName, npcUUID, action)
	default:
		return execResult{}
	}
}

func execGetObject(doc *persist.Document, roomID string, sheet *character.CharacterSheet, npcName string, action character.ActionRecord) execResult {
	name, _ := action.Args["object_name"].(string)
	if name == "" {
		return execResult{}
	}
	inter := &mutate.InteractionService{Doc: doc}
	r := inter.PickUp(roomID, sheet, name)
	if r.Err != nil {
		return execResult{}
	}
	return execResult{Text: fmt.Sprintf("%s picks up %s.", npcName, name)}
}

func execConsumeObject(room *model.Room, sheet *character.CharacterSheet, npcName string, action character.ActionRecord) execResult {
	uuid, _ := action.Args["object_uuid"].(string)
	idx := sheet.Inventory.Find(model.UUID(uuid))
	if idx == -1 {
		return execResult{}
	}
	obj := sheet.Inventory[idx]
	applied := false
	if n, ok := affordanceValue(obj.Tags, "edible"); ok {
		sheet.Needs.Hunger += float64(n)
		applied = true
	}
	if n, ok := affordanceValue(obj.Tags, "drinkable"); ok {
		sheet.Needs.Thirst += float64(n)
		applied = true
	}
	if !applied {
		return execResult{}
	}
	sheet.Needs.Clamp()
	sheet.Inventory.Remove(obj.UUID)
	for _, outputName := range obj.DeconstructRecipe {
		out := &model.Object{UUID: model.UUID(newUUID()), Name: outputName}
		room.Objects[out.UUID] = out
	}
	return execResult{Text: fmt.Sprintf("%s eats %s.", npcName, obj.Name)}
}

func execEmote(sheet *character.CharacterSheet, cfg Config, npcName string, action character.ActionRecord) execResult {
	sheet.Needs.Socialization += cfg.SocialRefill
	sheet.Needs.Clamp()
	msg, _ := action.Args["message"].(string)
	if msg == "" {
		return execResult{Text: fmt.Sprintf("%s emotes.", npcName)}
	}
	return execResult{Text: fmt.Sprintf("%s %s", npcName, msg)}
}

func execClaim(room *model.Room, npcUUID model.UUID, npcName string, action character.ActionRecord) execResult {
	uuid, _ := action.Args["object_uuid"].(string)
	obj, ok := room.Objects[model.UUID(uuid)]
	if !ok || obj.OwnerUserID != "" {
		return execResult{}
	}
	obj.OwnerUserID = string(npcUUID)
	return execResult{Text: fmt.Sprintf("%s claims %s.", npcName, obj.Name)}
}

func execUnclaim(room *model.Room, npcUUID model.UUID, npcName string, action character.ActionRecord) execResult {
	uuid, _ := action.Args["object_uuid"].(string)
	obj, ok := room.Objects[model.UUID(uuid)]
	if !ok || obj.OwnerUserID != string(npcUUID) {
		return execResult{}
	}
	obj.OwnerUserID = ""
	return execResult{Text: fmt.Sprintf("%s unclaims %s.", npcName, obj.Name)}
}

func execSleep(room *model.Room, sheet *character.CharacterSheet, npcUUID model.UUID, cfg Config, action character.ActionRecord) execResult {
	uuid, _ := action.Args["bed_uuid"].(string)
	var bed *model.Object
	if uuid != "" {
		bed = room.Objects[model.UUID(uuid)]
	}
	if bed == nil {
		for _, o := range room.Objects {
			if o.HasTag("bed") && o.OwnerUserID == string(npcUUID) {
				bed = o
				break
			}
		}
	}
	if bed == nil || !bed.HasTag("bed") || bed.OwnerUserID != string(npcUUID) {
		return execResult{}
	}
	sheet.Planner.SleepingTicksRemaining = cfg.SleepTicks
	sheet.Planner.SleepingBedUUID = bed.UUID
	return execResult{}
}

func execMoveThrough(doc *persist.Document, roomID string, room *model.Room, npcName string, npcUUID model.UUID, action character.ActionRecord) execResult {
	name, _ := action.Args["name"].(string)
	cands := make([]resolve.Candidate, 0, len(room.Doors)+2)
	for n := range room.Doors {
		cands = append(cands, resolve.Candidate{ID: n, Name: n})
	}
	if room.StairsUp != "" {
		cands = append(cands, resolve.Candidate{ID: "stairs up", Name: "stairs up"})
	}
	if room.StairsDown != "" {
		cands = append(cands, resolve.Candidate{ID: "stairs down", Name: "stairs down"})
	}
	r := resolve.Resolve(name, cands)
	if r.Outcome != resolve.Resolved {
		return execResult{}
	}
	var target string
	switch r.Resolved.Name {
	case "stairs up":
		target = room.StairsUp
	case "stairs down":
		target = room.StairsDown
	default:
		if policy, has := locks.HasPolicy(room, r.Resolved.Name); has {
			npcExists := func(string) bool { return false }
			npcRel := func(string, string) string { return "" }
			if !locks.Allowed(policy, string(npcUUID), npcExists, npcRel) {
				return execResult{}
			}
		}
		target = room.Doors[r.Resolved.Name]
	}
	destRoom, ok := doc.World.Rooms[target]
	if !ok {
		return execResult{}
	}
	delete(room.NPCs, npcName)
	destRoom.NPCs[npcName] = true
	return execResult{Text: fmt.Sprintf("%s leaves through %s.", npcName, r.Resolved.Name), RoomID: target}
}
