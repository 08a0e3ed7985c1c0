package integrity

import (
	"strings"
	"testing"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/persist"
)

func cleanDoc() *persist.Document {
	doc := persist.NewDocument()
	room := model.NewRoom("r1", "room-uuid-1", "a room")
	doc.World.Rooms["r1"] = room
	return doc
}

func containsIssue(issues []string, substr string) bool {
	for _, i := range issues {
		if strings.Contains(i, substr) {
			return true
		}
	}
	return false
}

func TestAuditCleanDocumentHasNoIssues(t *testing.T) {
	doc := cleanDoc()
	report := Audit(doc)
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues on a clean document, got %v", report.Issues)
	}
	if report.HealthScore != 1.0 {
		t.Fatalf("expected a perfect health score, got %v", report.HealthScore)
	}
}

func TestAuditDetectsDuplicateUUID(t *testing.T) {
	doc := cleanDoc()
	room := doc.World.Rooms["r1"]
	room.Objects["a"] = &model.Object{UUID: "dup-1", Name: "A"}
	room.Objects["b"] = &model.Object{UUID: "dup-1", Name: "B"}

	report := Audit(doc)
	if !containsIssue(report.Issues, "duplicate UUID dup-1") {
		t.Fatalf("expected a duplicate UUID issue, got %v", report.Issues)
	}
	if report.HealthScore >= 1.0 {
		t.Fatal("expected the health score to drop below 1.0 with an issue present")
	}
}

func TestAuditDetectsEmptyUUID(t *testing.T) {
	doc := cleanDoc()
	room := doc.World.Rooms["r1"]
	room.Objects["a"] = &model.Object{UUID: "", Name: "A"}

	report := Audit(doc)
	if !containsIssue(report.Issues, "empty UUID") {
		t.Fatalf("expected an empty UUID issue, got %v", report.Issues)
	}
}

func TestAuditDetectsOrphanNPCSheet(t *testing.T) {
	doc := cleanDoc()
	doc.Chars.NPCSheets["Ghost"] = character.NewCharacterSheet("Ghost", "")

	report := Audit(doc)
	if !containsIssue(report.Issues, `NPC sheet "Ghost" has no corresponding npc_ids entry`) {
		t.Fatalf("expected an orphan NPC sheet issue, got %v", report.Issues)
	}
}

func TestAuditDetectsRoomReferencingUnknownNPC(t *testing.T) {
	doc := cleanDoc()
	doc.World.Rooms["r1"].NPCs["Ghost"] = true

	report := Audit(doc)
	if !containsIssue(report.Issues, `room references unknown NPC "Ghost"`) {
		t.Fatalf("expected an unknown-NPC reference issue, got %v", report.Issues)
	}
}

func TestAuditDetectsNonReciprocalDoor(t *testing.T) {
	doc := cleanDoc()
	doc.World.Rooms["r2"] = model.NewRoom("r2", "room-uuid-2", "another room")
	room := doc.World.Rooms["r1"]
	room.Doors["north"] = "r2"
	room.DoorIDs["north"] = "door-1"
	room.Objects["door-1"] = &model.Object{UUID: "door-1", Name: "North Door", LinkTargetRoomID: "r2", Tags: []string{"Immovable", "Travel Point"}}

	report := Audit(doc)
	if !containsIssue(report.Issues, "no reciprocal door") {
		t.Fatalf("expected a missing-reciprocal-door issue, got %v", report.Issues)
	}
}

func TestAuditDetectsDoorObjectMissingTags(t *testing.T) {
	doc := cleanDoc()
	doc.World.Rooms["r2"] = model.NewRoom("r2", "room-uuid-2", "another room")
	a := doc.World.Rooms["r1"]
	b := doc.World.Rooms["r2"]
	a.Doors["north"] = "r2"
	a.DoorIDs["north"] = "door-1"
	a.Objects["door-1"] = &model.Object{UUID: "door-1", Name: "North Door", LinkTargetRoomID: "r2"}
	b.Doors["south"] = "r1"
	b.DoorIDs["south"] = "door-2"
	b.Objects["door-2"] = &model.Object{UUID: "door-2", Name: "South Door", LinkTargetRoomID: "r1", Tags: []string{"Immovable", "Travel Point"}}

	report := Audit(doc)
	if !containsIssue(report.Issues, "inconsistent with link target/tags") {
		t.Fatalf("expected a door-object tag inconsistency issue, got %v", report.Issues)
	}
}

func TestAuditDetectsNonReciprocalStairs(t *testing.T) {
	doc := cleanDoc()
	doc.World.Rooms["r2"] = model.NewRoom("r2", "room-uuid-2", "upstairs room")
	doc.World.Rooms["r1"].StairsUp = "r2"

	report := Audit(doc)
	if !containsIssue(report.Issues, "stairs_up_to") {
		t.Fatalf("expected a non-reciprocated stairs issue, got %v", report.Issues)
	}
}

func TestAuditDetectsTravelPointWithoutImmovable(t *testing.T) {
	doc := cleanDoc()
	doc.World.Rooms["r1"].Objects["tp-1"] = &model.Object{UUID: "tp-1", Name: "Portal", Tags: []string{"Travel Point"}, LinkTargetRoomID: "r1"}

	report := Audit(doc)
	if !containsIssue(report.Issues, "Travel Point without Immovable") {
		t.Fatalf("expected a travel-point-without-immovable issue, got %v", report.Issues)
	}
}

func TestAuditDetectsTravelPointWithMissingLinkTarget(t *testing.T) {
	doc := cleanDoc()
	doc.World.Rooms["r1"].Objects["tp-1"] = &model.Object{UUID: "tp-1", Name: "Portal", Tags: []string{"Travel Point", "Immovable"}, LinkTargetRoomID: "nowhere"}

	report := Audit(doc)
	if !containsIssue(report.Issues, "links to missing room") {
		t.Fatalf("expected a missing-link-target issue, got %v", report.Issues)
	}
}

func TestAuditDetectsInventoryDuplicateAndSizeViolation(t *testing.T) {
	doc := cleanDoc()
	sheet := character.NewCharacterSheet("Tom", "")
	big := &model.Object{UUID: "chest-1", Name: "Chest", Tags: []string{"large"}}
	sheet.Inventory[model.SlotSmallLo] = big
	doc.Chars.NPCSheets["Tom"] = sheet
	doc.Chars.NPCIDs["Tom"] = "tom-uuid"

	report := Audit(doc)
	if !containsIssue(report.Issues, "violating size constraints") {
		t.Fatalf("expected a slot size violation issue, got %v", report.Issues)
	}
}

func TestAuditDetectsOutOfBoundsNeeds(t *testing.T) {
	doc := cleanDoc()
	sheet := character.NewCharacterSheet("Tom", "")
	sheet.Needs.Hunger = 150
	doc.Chars.NPCSheets["Tom"] = sheet
	doc.Chars.NPCIDs["Tom"] = "tom-uuid"

	report := Audit(doc)
	if !containsIssue(report.Issues, "out-of-bounds needs") {
		t.Fatalf("expected an out-of-bounds needs issue, got %v", report.Issues)
	}
}

func TestAuditDetectsNegativeActionPoints(t *testing.T) {
	doc := cleanDoc()
	sheet := character.NewCharacterSheet("Tom", "")
	sheet.Planner.ActionPoints = -1
	doc.Chars.NPCSheets["Tom"] = sheet
	doc.Chars.NPCIDs["Tom"] = "tom-uuid"

	report := Audit(doc)
	if !containsIssue(report.Issues, "negative action points") {
		t.Fatalf("expected a negative action points issue, got %v", report.Issues)
	}
}
