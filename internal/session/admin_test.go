package session

import (
	"strings"
	"testing"

	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/service"
)

func TestRoomCreateSetdescAdddoor(t *testing.T) {
	m, sender := newTestManager(t)
	connectAndCreate(t, m, "s1", "Alice", "hunter2") // admin

	m.HandleLine("s1", "/room create cellar | a damp cellar")
	if _, ok := m.doc().World.Rooms["cellar"]; !ok {
		t.Fatal("expected cellar room created")
	}

	m.HandleLine("s1", "/room setdesc cellar | a very damp cellar")
	if m.doc().World.Rooms["cellar"].Description != "a very damp cellar" {
		t.Fatal("expected cellar description updated")
	}

	m.HandleLine("s1", "/room adddoor trapdoor | cellar")
	p, _ := sender.last("s1")
	if p.Type == service.PayloadError {
		t.Fatalf("expected adddoor to succeed, got %q", p.Content)
	}
	if _, ok := m.doc().World.Rooms[startRoomID].Doors["trapdoor"]; !ok {
		t.Fatal("expected the trapdoor installed in the starting room")
	}

	events, err := m.store.RecentEvents(10)
	if err != nil {
		t.Fatalf("unexpected error reading events: %v", err)
	}
	if len(events) != 1 || events[0].Category != "door" {
		t.Fatalf("expected one archived door event, got %+v", events)
	}
}

func TestRoomRemoveDoorCascadesAndLogsEvent(t *testing.T) {
	m, _ := newTestManager(t)
	connectAndCreate(t, m, "s1", "Alice", "hunter2") // admin

	m.HandleLine("s1", "/room create cellar | a damp cellar")
	m.HandleLine("s1", "/room adddoor trapdoor | cellar")
	m.HandleLine("s1", "/room removedoor trapdoor")

	if _, ok := m.doc().World.Rooms[startRoomID].Doors["trapdoor"]; ok {
		t.Fatal("expected the trapdoor removed from the starting room")
	}
	if _, ok := m.doc().World.Rooms["cellar"].Doors["trapdoor"]; ok {
		t.Fatal("expected the reciprocal door removed from cellar too")
	}

	events, err := m.store.RecentEvents(10)
	if err != nil {
		t.Fatalf("unexpected error reading events: %v", err)
	}
	var sawRemove bool
	for _, e := range events {
		if e.Category == "door" && strings.Contains(e.Description, "removed") {
			sawRemove = true
		}
	}
	if !sawRemove {
		t.Fatalf("expected a door-removed event archived, got %+v", events)
	}
}

func TestRoomAdminRequiresTwoPipeArgs(t *testing.T) {
	m, sender := newTestManager(t)
	connectAndCreate(t, m, "s1", "Alice", "hunter2")
	m.HandleLine("s1", "/room create cellar")
	p, _ := sender.last("s1")
	if p.Type != service.PayloadError || !strings.Contains(p.Content, "usage:") {
		t.Fatalf("expected a usage error for malformed /room create, got %+v", p)
	}
}

func TestNPCAddSetdescSetattr(t *testing.T) {
	m, sender := newTestManager(t)
	connectAndCreate(t, m, "s1", "Alice", "hunter2")

	m.HandleLine("s1", "/npc add start | Garrick | a gruff smith")
	if _, ok := m.doc().Chars.NPCSheets["Garrick"]; !ok {
		t.Fatal("expected the NPC sheet created")
	}

	m.HandleLine("s1", "/npc setdesc Garrick | an even gruffer smith")
	if m.doc().Chars.NPCSheets["Garrick"].Description != "an even gruffer smith" {
		t.Fatal("expected NPC description updated")
	}

	m.HandleLine("s1", "/npc setattr Garrick | strength | 15")
	p, _ := sender.last("s1")
	if p.Type == service.PayloadError {
		t.Fatalf("expected setattr to succeed, got %q", p.Content)
	}
	if m.doc().Chars.NPCSheets["Garrick"].Attributes.Strength != 15 {
		t.Fatalf("expected strength updated to 15, got %d", m.doc().Chars.NPCSheets["Garrick"].Attributes.Strength)
	}
}

func TestNPCGenerateWithoutConfiguredAdapterFails(t *testing.T) {
	m, sender := newTestManager(t)
	connectAndCreate(t, m, "s1", "Alice", "hunter2")
	m.HandleLine("s1", "/npc generate")
	p, _ := sender.last("s1")
	if p.Type != service.PayloadError {
		t.Fatal("expected /npc generate to fail without a configured AI generator")
	}
}

func TestNPCSheetViewReportsVitals(t *testing.T) {
	m, sender := newTestManager(t)
	connectAndCreate(t, m, "s1", "Alice", "hunter2")
	m.HandleLine("s1", "/npc add start | Garrick | a gruff smith")
	m.HandleLine("s1", "/npc sheet Garrick")
	p, _ := sender.last("s1")
	if !strings.Contains(p.Content, "Garrick") || !strings.Contains(p.Content, "HP") {
		t.Fatalf("expected an NPC sheet view, got %q", p.Content)
	}
}

func TestObjectCreateFromTemplateAndDeleteTemplate(t *testing.T) {
	m, sender := newTestManager(t)
	connectAndCreate(t, m, "s1", "Alice", "hunter2")
	m.doc().World.ObjectTemplates["torch"] = &model.ObjectTemplate{Key: "torch", Name: "Torch"}

	m.HandleLine("s1", "/object create torch")
	p, _ := sender.last("s1")
	if p.Type == service.PayloadError {
		t.Fatalf("expected object creation from template to succeed, got %q", p.Content)
	}
	found := false
	for _, o := range m.doc().World.Rooms[startRoomID].Objects {
		if o.Name == "Torch" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a Torch instantiated in the room")
	}

	m.HandleLine("s1", "/object deletetemplate torch")
	if _, ok := m.doc().World.ObjectTemplates["torch"]; ok {
		t.Fatal("expected the torch template removed")
	}
}

func TestKickDisconnectsTarget(t *testing.T) {
	kicked := ""
	m, sender := newTestManagerWithDisconnect(t, func(id string) { kicked = id })
	connectAndCreate(t, m, "s1", "Alice", "hunter2")
	connectAndCreate(t, m, "s2", "Bob", "swordfish")

	m.HandleLine("s1", "/kick Bob")
	if kicked != "s2" {
		t.Fatalf("expected Bob's session (s2) kicked, got %q", kicked)
	}
	p, _ := sender.last("s1")
	if p.Type == service.PayloadError {
		t.Fatalf("expected the kick to report success, got %q", p.Content)
	}
}

func TestKickUnknownUserNotFound(t *testing.T) {
	m, sender := newTestManager(t)
	connectAndCreate(t, m, "s1", "Alice", "hunter2")
	m.HandleLine("s1", "/kick Ghost")
	p, _ := sender.last("s1")
	if p.Type != service.PayloadError {
		t.Fatal("expected kicking an unknown user to fail")
	}
}

func TestPurgeResetsWorldAndRelocatesPlayers(t *testing.T) {
	m, sender := newTestManager(t)
	connectAndCreate(t, m, "s1", "Alice", "hunter2")
	m.HandleLine("s1", "/room create cellar | a damp cellar")
	m.HandleLine("s1", "/npc add start | Garrick | a smith")

	m.HandleLine("s1", "/purge")
	p, _ := sender.last("s1")
	if p.Type == service.PayloadError {
		t.Fatalf("expected purge to succeed, got %q", p.Content)
	}
	if _, ok := m.doc().World.Rooms["cellar"]; ok {
		t.Fatal("expected the purge to drop the created cellar room")
	}
	if len(m.doc().Chars.NPCSheets) != 0 {
		t.Fatal("expected the purge to clear NPC sheets")
	}
	if len(m.doc().Chars.Users) != 1 {
		t.Fatal("expected accounts preserved across a purge")
	}
	m.mu.Lock()
	sess := m.sessions["s1"]
	m.mu.Unlock()
	if sess.player.RoomID != startRoomID {
		t.Fatalf("expected the player relocated to the rebuilt start room, got %q", sess.player.RoomID)
	}
}

func TestSafetySetsLevel(t *testing.T) {
	m, sender := newTestManager(t)
	connectAndCreate(t, m, "s1", "Alice", "hunter2")
	m.HandleLine("s1", "/safety R")
	p, _ := sender.last("s1")
	if p.Type == service.PayloadError {
		t.Fatalf("expected setting safety level R to succeed, got %q", p.Content)
	}
	if m.doc().World.SafetyLevel != model.SafetyR {
		t.Fatalf("expected safety level set to R, got %v", m.doc().World.SafetyLevel)
	}
}

func TestSafetyRejectsInvalidLevel(t *testing.T) {
	m, sender := newTestManager(t)
	connectAndCreate(t, m, "s1", "Alice", "hunter2")
	m.HandleLine("s1", "/safety NOTALEVEL")
	p, _ := sender.last("s1")
	if p.Type != service.PayloadError {
		t.Fatal("expected an invalid safety level rejected")
	}
}
