// Package integrity implements the Section 4.J validation and integrity
// auditor: a read-only scan producing issues and a health score, plus
// cleanup routines that repair what can be safely repaired. Grounded on
// the teacher's engine/crime.go scan-and-log style and agents/soul.go's
// clamp-on-write, generalized from per-agent wellbeing checks to whole-
// world referential integrity.
package integrity

import (
	"fmt"
	"sort"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/persist"
)

// Report is the result of one audit pass (Section 4.J).
type Report struct {
	Issues      []string
	HealthScore float64 // 1.0 = no issues found
}

// Audit runs every Section 4.J check against doc and returns a Report. It
// never mutates doc — see Cleanup for repairs.
func Audit(doc *persist.Document) Report {
	var issues []string

	issues = append(issues, checkUUIDUniqueness(doc)...)
	issues = append(issues, checkReferential(doc)...)
	issues = append(issues, checkDoorReciprocity(doc)...)
	issues = append(issues, checkStairReciprocity(doc)...)
	issues = append(issues, checkTravelPointTags(doc)...)
	issues = append(issues, checkInventoryIntegrity(doc)...)
	issues = append(issues, checkNeedsAndAPBounds(doc)...)

	sort.Strings(issues)

	score := 1.0
	if n := len(issues); n > 0 {
		score = 1.0 / float64(1+n)
	}
	return Report{Issues: issues, HealthScore: score}
}

// checkUUIDUniqueness implements check 1: global UUID uniqueness across
// rooms/objects/NPCs/users. Format is checked only as far as rejecting an
// empty UUID; non-empty ids are not parsed as RFC 4122 UUIDs.
func checkUUIDUniqueness(doc *persist.Document) []string {
	seen := map[model.UUID]string{}
	var issues []string
	note := func(id model.UUID, where string) {
		if id == "" {
			issues = append(issues, fmt.Sprintf("empty UUID at %s", where))
			return
		}
		if prior, dup := seen[id]; dup {
			issues = append(issues, fmt.Sprintf("duplicate UUID %s at %s and %s", id, prior, where))
			return
		}
		seen[id] = where
	}

	for rid, room := range doc.World.Rooms {
		note(room.UUID, "room "+rid)
		for oid, obj := range room.Objects {
			note(obj.UUID, "object "+string(oid)+" in room "+rid)
			for _, c := range obj.Contents {
				if c != nil {
					note(c.UUID, "contained object in "+string(oid))
				}
			}
		}
	}
	for name, id := range doc.Chars.NPCIDs {
		note(id, "npc "+name)
	}
	for uid := range doc.Chars.Users {
		note(model.UUID(uid), "user "+uid)
	}
	forEachInventory(doc, func(owner string, obj *model.Object) {
		note(obj.UUID, "inventory object of "+owner)
	})
	return issues
}

// checkReferential implements check 2: every NPC sheet has an npc_ids
// entry, and every NPC name a room lists has a sheet. Player room-ids are
// not checked, since Player bindings are session state and not part of
// the document.
func checkReferential(doc *persist.Document) []string {
	var issues []string
	for name := range doc.Chars.NPCSheets {
		if _, ok := doc.Chars.NPCIDs[name]; !ok {
			issues = append(issues, fmt.Sprintf("NPC sheet %q has no corresponding npc_ids entry", name))
		}
	}
	for _, room := range doc.World.Rooms {
		for name := range room.NPCs {
			if _, ok := doc.Chars.NPCSheets[name]; !ok {
				issues = append(issues, fmt.Sprintf("room references unknown NPC %q", name))
			}
		}
	}
	return issues
}

// checkDoorReciprocity implements check 3.
func checkDoorReciprocity(doc *persist.Document) []string {
	var issues []string
	for aID, a := range doc.World.Rooms {
		for name, bID := range a.Doors {
			b, ok := doc.World.Rooms[bID]
			if !ok {
				issues = append(issues, fmt.Sprintf("room %q door %q targets missing room %q", aID, name, bID))
				continue
			}
			if !hasDoorTo(b, aID) {
				issues = append(issues, fmt.Sprintf("room %q door %q has no reciprocal door in %q", aID, name, bID))
			}
			doorObj, ok := a.Objects[a.DoorIDs[name]]
			if !ok {
				issues = append(issues, fmt.Sprintf("room %q door %q missing its Object", aID, name))
				continue
			}
			if doorObj.LinkTargetRoomID != bID || !doorObj.HasTag("Immovable") || !doorObj.HasTag("Travel Point") {
				issues = append(issues, fmt.Sprintf("room %q door %q Object inconsistent with link target/tags", aID, name))
			}
		}
	}
	return issues
}

func hasDoorTo(room *model.Room, targetID string) bool {
	for _, t := range room.Doors {
		if t == targetID {
			return true
		}
	}
	return false
}

// checkStairReciprocity implements check 4, the stairs analog of check 3.
func checkStairReciprocity(doc *persist.Document) []string {
	var issues []string
	for aID, a := range doc.World.Rooms {
		if a.StairsUp != "" {
			b, ok := doc.World.Rooms[a.StairsUp]
			if !ok || b.StairsDown != aID {
				issues = append(issues, fmt.Sprintf("room %q stairs_up_to %q not reciprocated", aID, a.StairsUp))
			}
		}
		if a.StairsDown != "" {
			b, ok := doc.World.Rooms[a.StairsDown]
			if !ok || b.StairsUp != aID {
				issues = append(issues, fmt.Sprintf("room %q stairs_down_to %q not reciprocated", aID, a.StairsDown))
			}
		}
	}
	return issues
}

// checkTravelPointTags implements check 5: every Travel Point object must
// also have Immovable and a valid link_target_room_id.
func checkTravelPointTags(doc *persist.Document) []string {
	var issues []string
	for rid, room := range doc.World.Rooms {
		for oid, obj := range room.Objects {
			if !obj.HasTag("Travel Point") {
				continue
			}
			if !obj.HasTag("Immovable") {
				issues = append(issues, fmt.Sprintf("object %s in room %q has Travel Point without Immovable", oid, rid))
			}
			if obj.LinkTargetRoomID == "" {
				issues = append(issues, fmt.Sprintf("object %s in room %q has Travel Point without a link target", oid, rid))
				continue
			}
			if _, ok := doc.World.Rooms[obj.LinkTargetRoomID]; !ok {
				issues = append(issues, fmt.Sprintf("object %s in room %q links to missing room %q", oid, rid, obj.LinkTargetRoomID))
			}
		}
	}
	return issues
}

// checkInventoryIntegrity implements check 6: exactly 8 slots per
// character, no duplicate UUIDs across slots, slot-size constraints
// honored.
func checkInventoryIntegrity(doc *persist.Document) []string {
	var issues []string
	check := func(owner string, inv *model.Inventory) {
		seen := map[model.UUID]bool{}
		for idx, obj := range inv {
			if obj == nil {
				continue
			}
			if seen[obj.UUID] {
				issues = append(issues, fmt.Sprintf("%s inventory has duplicate UUID %s", owner, obj.UUID))
			}
			seen[obj.UUID] = true
			if !model.Accepts(idx, obj) {
				issues = append(issues, fmt.Sprintf("%s inventory slot %d holds %s, violating size constraints", owner, idx, obj.Name))
			}
		}
	}
	for uid, user := range doc.Chars.Users {
		if user.Sheet != nil {
			check("user "+uid, &user.Sheet.Inventory)
		}
	}
	for name, sheet := range doc.Chars.NPCSheets {
		check("npc "+name, &sheet.Inventory)
	}
	return issues
}

// checkNeedsAndAPBounds implements check 7.
func checkNeedsAndAPBounds(doc *persist.Document) []string {
	var issues []string
	check := func(owner string, sheet *character.CharacterSheet) {
		if sheet.Needs.Hunger < 0 || sheet.Needs.Hunger > 100 ||
			sheet.Needs.Thirst < 0 || sheet.Needs.Thirst > 100 ||
			sheet.Needs.Socialization < 0 || sheet.Needs.Socialization > 100 ||
			sheet.Needs.Sleep < 0 || sheet.Needs.Sleep > 100 {
			issues = append(issues, fmt.Sprintf("%s has out-of-bounds needs", owner))
		}
		if sheet.Planner.ActionPoints < 0 {
			issues = append(issues, fmt.Sprintf("%s has negative action points", owner))
		}
	}
	for uid, user := range doc.Chars.Users {
		if user.Sheet != nil {
			check("user "+uid, user.Sheet)
		}
	}
	for name, sheet := range doc.Chars.NPCSheets {
		check("npc "+name, sheet)
	}
	return issues
}

func forEachInventory(doc *persist.Document, fn func(owner string, obj *model.Object)) {
	for uid, user := range doc.Chars.Users {
		if user.Sheet == nil {
			continue
		}
		for _, obj := range user.Sheet.Inventory {
			if obj != nil {
				fn("user "+uid, obj)
			}
		}
	}
	for name, sheet := range doc.Chars.NPCSheets {
		for _, obj := range sheet.Inventory {
			if obj != nil {
				fn("npc "+name, obj)
			}
		}
	}
}
