package mutate

import (
	"errors"
	"testing"

	"github.com/talgya/mini-world/internal/service"
)

func docWithRoom(t *testing.T, roomID string) *RoomService {
	t.Helper()
	doc := newTestDoc()
	rooms := &RoomService{Doc: doc}
	if r := rooms.CreateRoom(roomID, "a room"); r.Err != nil {
		t.Fatalf("setup: %v", r.Err)
	}
	return rooms
}

func TestNPCAddMaintainsAllThreeSets(t *testing.T) {
	rooms := docWithRoom(t, "plaza")
	npcs := &NPCService{Doc: rooms.Doc}

	r := npcs.Add("plaza", "Old Tom", "a weathered merchant")
	if r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}
	if !rooms.Doc.World.Rooms["plaza"].NPCs["Old Tom"] {
		t.Fatal("expected NPC added to room's NPC set")
	}
	if _, ok := rooms.Doc.Chars.NPCSheets["Old Tom"]; !ok {
		t.Fatal("expected an NPC sheet created")
	}
	if _, ok := rooms.Doc.Chars.NPCIDs["Old Tom"]; !ok {
		t.Fatal("expected an NPC id minted")
	}
}

func TestNPCAddRejectsDuplicateName(t *testing.T) {
	rooms := docWithRoom(t, "plaza")
	npcs := &NPCService{Doc: rooms.Doc}
	npcs.Add("plaza", "Old Tom", "a merchant")

	r := npcs.Add("plaza", "Old Tom", "a different merchant")
	if errKind(r.Err) != service.KindConstraint {
		t.Fatalf("expected a constraint error on duplicate NPC name, got %+v", r.Err)
	}
}

func TestNPCRemoveDropsFromRoomButKeepsSheet(t *testing.T) {
	rooms := docWithRoom(t, "plaza")
	npcs := &NPCService{Doc: rooms.Doc}
	npcs.Add("plaza", "Old Tom", "a merchant")

	r := npcs.Remove("plaza", "Old Tom")
	if r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}
	if rooms.Doc.World.Rooms["plaza"].NPCs["Old Tom"] {
		t.Fatal("expected NPC removed from room's live set")
	}
	if _, ok := rooms.Doc.Chars.NPCSheets["Old Tom"]; !ok {
		t.Fatal("expected the sheet to be retained for historical reference")
	}
}

func TestNPCSetAttributeClampsAndValidates(t *testing.T) {
	rooms := docWithRoom(t, "plaza")
	npcs := &NPCService{Doc: rooms.Doc}
	npcs.Add("plaza", "Old Tom", "a merchant")

	r := npcs.SetAttribute("Old Tom", "strength", "99")
	if r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}
	if rooms.Doc.Chars.NPCSheets["Old Tom"].Attributes.Strength != 18 {
		t.Fatalf("expected strength clamped to 18, got %d", rooms.Doc.Chars.NPCSheets["Old Tom"].Attributes.Strength)
	}

	if r := npcs.SetAttribute("Old Tom", "strength", "not-a-number"); errKind(r.Err) != service.KindValidation {
		t.Fatalf("expected a validation error for a non-numeric value, got %+v", r.Err)
	}
	if r := npcs.SetAttribute("Old Tom", "charisma", "10"); errKind(r.Err) != service.KindValidation {
		t.Fatalf("expected a validation error for an unknown attribute key, got %+v", r.Err)
	}
}

func TestNPCSetMatrixRangeAndClamp(t *testing.T) {
	rooms := docWithRoom(t, "plaza")
	npcs := &NPCService{Doc: rooms.Doc}
	npcs.Add("plaza", "Old Tom", "a merchant")

	if r := npcs.SetMatrix("Old Tom", "99", "5"); errKind(r.Err) != service.KindValidation {
		t.Fatalf("expected a validation error for an out-of-range axis, got %+v", r.Err)
	}

	r := npcs.SetMatrix("Old Tom", "0", "50")
	if r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}
	if rooms.Doc.Chars.NPCSheets["Old Tom"].Matrix[0] != 10 {
		t.Fatalf("expected axis 0 clamped to 10, got %d", rooms.Doc.Chars.NPCSheets["Old Tom"].Matrix[0])
	}
}

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) Generate(prompt string, maxTokens int) (string, error) {
	return f.text, f.err
}

func TestNPCGenerateSuccess(t *testing.T) {
	rooms := docWithRoom(t, "plaza")
	npcs := &NPCService{Doc: rooms.Doc}
	gen := &fakeGenerator{text: "Mira the Blacksmith|forges steel beneath the square"}

	r := npcs.Generate(gen, "plaza", "", "")
	if r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}
	sheet, ok := rooms.Doc.Chars.NPCSheets["Mira the Blacksmith"]
	if !ok {
		t.Fatal("expected generated NPC to be created")
	}
	if sheet.Description != "forges steel beneath the square" {
		t.Fatalf("unexpected generated description: %q", sheet.Description)
	}
}

func TestNPCGenerateFailureCreatesNoNPC(t *testing.T) {
	rooms := docWithRoom(t, "plaza")
	npcs := &NPCService{Doc: rooms.Doc}
	gen := &fakeGenerator{err: errors.New("adapter down")}

	r := npcs.Generate(gen, "plaza", "", "")
	if errKind(r.Err) != service.KindAdapter {
		t.Fatalf("expected an adapter error, got %+v", r.Err)
	}
	if len(rooms.Doc.Chars.NPCSheets) != 0 {
		t.Fatal("expected no NPC created on generator failure")
	}
}
