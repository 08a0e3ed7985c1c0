package integrity

import (
	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/goap"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/persist"
)

// Cleanup performs the repairs named in Section 4.J: clamp needs and the
// psychosocial matrix, drop malformed plan entries, reset inconsistent
// sleep state, and remove orphan references to deleted users. It mutates
// doc in place and is safe to call repeatedly (idempotent).
func Cleanup(doc *persist.Document) {
	for _, user := range doc.Chars.Users {
		if user.Sheet != nil {
			clampSheet(user.Sheet)
		}
	}
	for name, sheet := range doc.Chars.NPCSheets {
		clampSheet(sheet)
		npcUUID := doc.Chars.NPCIDs[name]
		for _, room := range doc.World.Rooms {
			if room.NPCs[name] {
				goap.EnforceInvariants(sheet, room, npcUUID)
			}
		}
	}

	removeOrphanRelationships(doc)
	removeOrphanDoorLocks(doc)
}

func clampSheet(sheet *character.CharacterSheet) {
	sheet.Needs.Clamp()
	sheet.Matrix.Clamp()
	sheet.ClampMorale()
	if sheet.Planner.ActionPoints < 0 {
		sheet.Planner.ActionPoints = 0
	}
}

// removeOrphanRelationships drops relationship entries keyed by a user-id
// that no longer exists in chars.users.
func removeOrphanRelationships(doc *persist.Document) {
	exists := func(id string) bool {
		_, ok := doc.Chars.Users[id]
		return ok
	}
	forgetRelationships := func(sheet *character.CharacterSheet) {
		if sheet == nil {
			return
		}
		for id := range sheet.Relationships {
			if !exists(id) {
				delete(sheet.Relationships, id)
			}
		}
	}
	for _, user := range doc.Chars.Users {
		forgetRelationships(user.Sheet)
	}
	for _, sheet := range doc.Chars.NPCSheets {
		forgetRelationships(sheet)
	}
}

// removeOrphanDoorLocks drops door_locks allow-id entries that reference a
// deleted user.
func removeOrphanDoorLocks(doc *persist.Document) {
	exists := func(id string) bool {
		_, ok := doc.Chars.Users[id]
		return ok
	}
	for _, room := range doc.World.Rooms {
		for name, policy := range room.DoorLocks {
			policy.AllowIDs = filterExisting(policy.AllowIDs, exists)
			var kept []model.RelationAllow
			for _, rel := range policy.AllowRel {
				if exists(rel.OtherUserID) {
					kept = append(kept, rel)
				}
			}
			policy.AllowRel = kept
			room.DoorLocks[name] = policy
		}
	}
}

func filterExisting(ids []string, exists func(string) bool) []string {
	kept := ids[:0]
	for _, id := range ids {
		if exists(id) {
			kept = append(kept, id)
		}
	}
	return kept
}
