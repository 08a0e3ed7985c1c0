package goap

import (
	"math/rand"
	"testing"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/model"
)

func TestTickUnknownRoomReturnsNil(t *testing.T) {
	doc, _, _ := fixtureDoc("r1", "Tom")
	out := Tick(doc, "nowhere", "Tom", DefaultConfig(), nil, false, rand.New(rand.NewSource(1)))
	if out != nil {
		t.Fatalf("expected nil for an unknown room, got %v", out)
	}
}

func TestTickUnknownNPCReturnsNil(t *testing.T) {
	doc, _, _ := fixtureDoc("r1", "Tom")
	out := Tick(doc, "r1", "Ghost", DefaultConfig(), nil, false, rand.New(rand.NewSource(1)))
	if out != nil {
		t.Fatalf("expected nil for an unknown NPC, got %v", out)
	}
}

func TestTickSleepingDecaysAndSkipsPlanning(t *testing.T) {
	doc, room, sheet := fixtureDoc("r1", "Tom")
	npcUUID := doc.Chars.NPCIDs["Tom"]
	room.Objects["bed-1"] = &model.Object{UUID: "bed-1", Name: "Bed", Tags: []string{"bed"}, OwnerUserID: string(npcUUID)}
	sheet.Planner.SleepingTicksRemaining = 2
	sheet.Planner.SleepingBedUUID = "bed-1"
	sheet.Needs.Sleep = 50

	out := Tick(doc, "r1", "Tom", DefaultConfig(), nil, false, rand.New(rand.NewSource(1)))
	if out != nil {
		t.Fatalf("expected no broadcasts while sleeping, got %v", out)
	}
	if sheet.Planner.SleepingTicksRemaining != 1 {
		t.Fatalf("expected sleep timer decremented, got %d", sheet.Planner.SleepingTicksRemaining)
	}
	if sheet.Needs.Sleep != 60 {
		t.Fatalf("expected sleep refilled while sleeping, got %v", sheet.Needs.Sleep)
	}
}

func TestTickWakesWhenSleepTimerExpires(t *testing.T) {
	doc, room, sheet := fixtureDoc("r1", "Tom")
	npcUUID := doc.Chars.NPCIDs["Tom"]
	room.Objects["bed-1"] = &model.Object{UUID: "bed-1", Name: "Bed", Tags: []string{"bed"}, OwnerUserID: string(npcUUID)}
	sheet.Planner.SleepingTicksRemaining = 1
	sheet.Planner.SleepingBedUUID = "bed-1"

	Tick(doc, "r1", "Tom", DefaultConfig(), nil, false, rand.New(rand.NewSource(1)))
	if sheet.Planner.SleepingTicksRemaining != 0 {
		t.Fatalf("expected the sleep timer to reach zero, got %d", sheet.Planner.SleepingTicksRemaining)
	}
	if sheet.Planner.SleepingBedUUID != "" {
		t.Fatal("expected the bed reference cleared once sleep ends")
	}
}

func TestTickGeneratesAndExecutesAnOfflinePlan(t *testing.T) {
	doc, room, sheet := fixtureDoc("r1", "Tom")
	sheet.Needs = character.Needs{Hunger: 5, Thirst: 100, Socialization: 100, Sleep: 100}
	sheet.Planner.ActionPoints = 3
	room.Objects["apple-1"] = &model.Object{UUID: "apple-1", Name: "Apple", Tags: []string{"Edible: 20"}}

	out := Tick(doc, "r1", "Tom", DefaultConfig(), nil, false, rand.New(rand.NewSource(1)))
	if len(out) == 0 {
		t.Fatal("expected at least one broadcast from executing the generated plan")
	}
	if sheet.Needs.Hunger <= 5 {
		t.Fatalf("expected hunger raised after eating, got %v", sheet.Needs.Hunger)
	}
}

func TestTickCapsExecutedActionsAtAPMax(t *testing.T) {
	doc, _, sheet := fixtureDoc("r1", "Tom")
	cfg := DefaultConfig()
	sheet.Planner.ActionPoints = cfg.APMax
	for i := 0; i < cfg.APMax+5; i++ {
		sheet.Planner.PlanQueue = append(sheet.Planner.PlanQueue, character.ActionRecord{Tool: "do_nothing"})
	}

	Tick(doc, "r1", "Tom", cfg, nil, false, rand.New(rand.NewSource(1)))
	if sheet.Planner.ActionPoints != 0 {
		t.Fatalf("expected all AP spent up to APMax, got %d", sheet.Planner.ActionPoints)
	}
	if len(sheet.Planner.PlanQueue) != 5 {
		t.Fatalf("expected only APMax actions executed, %d left in queue, got %d", 5, len(sheet.Planner.PlanQueue))
	}
}

func TestTickOverrideInsertedAheadOfQueueWhenHighPriority(t *testing.T) {
	doc, room, sheet := fixtureDoc("r1", "Tom")
	sheet.Extended.Safety = 10
	sheet.Planner.ActionPoints = 3
	room.Objects["wolf-1"] = &model.Object{UUID: "wolf-1", Name: "Wolf", Tags: []string{"threat"}}
	room.Doors["north"] = "r2"
	dest := model.NewRoom("r2", "owner-1", "another room")
	doc.World.Rooms["r2"] = dest

	out := Tick(doc, "r1", "Tom", DefaultConfig(), nil, false, rand.New(rand.NewSource(1)))
	if len(out) == 0 {
		t.Fatal("expected the fear override to execute and broadcast a departure")
	}
	if room.NPCs["Tom"] {
		t.Fatal("expected the NPC fled the threatened room")
	}
}

func TestTickActionsAfterMoveOperateOnNewRoom(t *testing.T) {
	doc, room, sheet := fixtureDoc("r1", "Tom")
	npcUUID := doc.Chars.NPCIDs["Tom"]
	dest := model.NewRoom("r2", "owner-1", "another room")
	doc.World.Rooms["r2"] = dest
	room.Doors["north"] = "r2"
	dest.Objects["bed-1"] = &model.Object{UUID: "bed-1", Name: "Bed", Tags: []string{"bed"}, OwnerUserID: string(npcUUID)}

	cfg := DefaultConfig()
	sheet.Planner.ActionPoints = 2
	sheet.Planner.PlanQueue = []character.ActionRecord{
		{Tool: "move_through", Args: map[string]any{"name": "north"}},
		{Tool: "sleep", Args: map[string]any{"bed_uuid": "bed-1"}},
	}

	Tick(doc, "r1", "Tom", cfg, nil, false, rand.New(rand.NewSource(1)))

	if sheet.Planner.SleepingTicksRemaining == 0 {
		t.Fatal("expected the sleep action queued behind the move to act on the destination room's bed")
	}
	if !dest.NPCs["Tom"] {
		t.Fatal("expected the NPC to end up in the destination room")
	}
}

func TestEnforceInvariantsDropsMalformedActions(t *testing.T) {
	doc, room, sheet := fixtureDoc("r1", "Tom")
	npcUUID := doc.Chars.NPCIDs["Tom"]
	sheet.Planner.PlanQueue = []character.ActionRecord{{Tool: "do_nothing"}, {Tool: "delete_world"}}
	EnforceInvariants(sheet, room, npcUUID)
	if len(sheet.Planner.PlanQueue) != 1 || sheet.Planner.PlanQueue[0].Tool != "do_nothing" {
		t.Fatalf("expected the invalid tool dropped, got %+v", sheet.Planner.PlanQueue)
	}
}

func TestEnforceInvariantsClearsSleepWhenBedGone(t *testing.T) {
	doc, _, sheet := fixtureDoc("r1", "Tom")
	room := doc.World.Rooms["r1"]
	npcUUID := doc.Chars.NPCIDs["Tom"]
	sheet.Planner.SleepingTicksRemaining = 2
	sheet.Planner.SleepingBedUUID = "bed-1"

	EnforceInvariants(sheet, room, npcUUID)
	if sheet.Planner.SleepingTicksRemaining != 0 {
		t.Fatal("expected sleep state cleared when the bed no longer exists")
	}
}

func TestEnforceInvariantsClampsNegativeActionPoints(t *testing.T) {
	doc, room, sheet := fixtureDoc("r1", "Tom")
	npcUUID := doc.Chars.NPCIDs["Tom"]
	sheet.Planner.ActionPoints = -3
	EnforceInvariants(sheet, room, npcUUID)
	if sheet.Planner.ActionPoints != 0 {
		t.Fatalf("expected negative action points clamped to zero, got %d", sheet.Planner.ActionPoints)
	}
}
