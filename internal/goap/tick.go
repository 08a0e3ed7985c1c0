package goap

import (
	"math/rand"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/persist"
)

// Tick runs one full Section 4.H cycle for a single NPC: needs decay, AP
// regeneration, sleep handling, the autonomy override, plan generation
// (if needed), and execution of up to ApMax queued actions. It returns
// the broadcast lines produced, in action-execution order (Section 5
// ordering rule: "tick-produced broadcasts for a given NPC are delivered
// in action-execution order").
func Tick(doc *persist.Document, roomID, npcName string, cfg Config, gen Generator, advancedEnabled bool, rng *rand.Rand) []string {
	room, ok := doc.World.Rooms[roomID]
	if !ok {
		return nil
	}
	sheet, ok := doc.Chars.NPCSheets[npcName]
	if !ok {
		return nil
	}
	npcUUID := doc.Chars.NPCIDs[npcName]

	EnforceInvariants(sheet, room, npcUUID)

	alone := len(room.Players) == 0 && len(room.NPCs) <= 1

	if sheet.Planner.SleepingTicksRemaining > 0 {
		DecayNeeds(sheet, cfg, true, alone)
		sheet.Planner.SleepingTicksRemaining--
		if sheet.Planner.SleepingTicksRemaining == 0 {
			sheet.Planner.SleepingBedUUID = ""
		}
		RegenAP(sheet, cfg)
		return nil
	}

	DecayNeeds(sheet, cfg, false, alone)
	RegenAP(sheet, cfg)

	override, hasOverride := Override(sheet, room)

	if len(sheet.Planner.PlanQueue) == 0 {
		if _, val := MostUnsatisfiedNeed(sheet); val < cfg.NeedThreshold {
			sheet.Planner.PlanQueue = GeneratePlan(sheet, room, npcUUID, doc.World.Name, advancedEnabled, gen)
		}
	}
	if hasOverride && override.Priority >= 80 {
		sheet.Planner.PlanQueue = append([]character.ActionRecord{override.Action}, sheet.Planner.PlanQueue...)
	}

	var broadcasts []string
	executed := 0
	for executed < cfg.APMax && len(sheet.Planner.PlanQueue) > 0 && sheet.Planner.ActionPoints > 0 {
		action := sheet.Planner.PlanQueue[0]
		sheet.Planner.PlanQueue = sheet.Planner.PlanQueue[1:]
		result := executeAction(doc, roomID, room, sheet, npcName, npcUUID, cfg, rng, action)
		sheet.Planner.ActionPoints--
		executed++
		if result.Text != "" {
			broadcasts = append(broadcasts, result.Text)
		}
		if result.RoomID != "" && result.RoomID != roomID {
			if newRoom, ok := doc.World.Rooms[result.RoomID]; ok {
				roomID = result.RoomID
				room = newRoom
			}
		}
	}

	EnforceInvariants(sheet, room, npcUUID)
	return broadcasts
}

// EnforceInvariants implements Section 4.H.6: drop malformed plan
// entries, fix inconsistent sleep state, and clamp action points.
func EnforceInvariants(sheet *character.CharacterSheet, room *model.Room, npcUUID model.UUID) {
	valid := sheet.Planner.PlanQueue[:0]
	for _, a := range sheet.Planner.PlanQueue {
		if ValidTool(a.Tool) {
			valid = append(valid, a)
		}
	}
	sheet.Planner.PlanQueue = valid

	if sheet.Planner.SleepingTicksRemaining > 0 {
		bed, ok := room.Objects[sheet.Planner.SleepingBedUUID]
		if !ok || !bed.HasTag("bed") || bed.OwnerUserID != string(npcUUID) {
			sheet.Planner.SleepingTicksRemaining = 0
			sheet.Planner.SleepingBedUUID = ""
		}
	} else {
		sheet.Planner.SleepingBedUUID = ""
	}

	if sheet.Planner.ActionPoints < 0 {
		sheet.Planner.ActionPoints = 0
	}
}
