// Package locks evaluates door/stair traversal permission policies
// (Section 4.G). Grounded on the teacher's engine/crime.go, which likewise
// reduces a relationship/role check to a single pure boolean function
// consulted before a state change, rather than threading permission logic
// through the mutation itself.
package locks

import "github.com/talgya/mini-world/internal/model"

// UserExists reports whether a user-id still has a live account. Passed in
// rather than imported, since internal/locks must not depend on
// internal/character (which would create an import cycle back through
// internal/persist).
type UserExists func(userID string) bool

// RelationshipOf returns the relationship type actorUserID records toward
// otherUserID, or "" if none.
type RelationshipOf func(actorUserID, otherUserID string) string

// Allowed evaluates policy for actorUserID per Section 4.G:
//   - missing/corrupted policy (both sets empty) denies;
//   - allow_ids membership grants;
//   - an allow_rel entry grants only if the named other user still exists
//     and the relationship graph records the exact relationship type —
//     a deleted account causes that rule to be skipped, never granted.
func Allowed(policy model.DoorLockPolicy, actorUserID string, exists UserExists, relOf RelationshipOf) bool {
	if len(policy.AllowIDs) == 0 && len(policy.AllowRel) == 0 {
		return false
	}
	for _, id := range policy.AllowIDs {
		if id == actorUserID {
			return true
		}
	}
	for _, rule := range policy.AllowRel {
		if !exists(rule.OtherUserID) {
			continue
		}
		if relOf(actorUserID, rule.OtherUserID) == rule.RelType {
			return true
		}
	}
	return false
}

// HasPolicy reports whether door carries any lock policy at all. A door
// absent from DoorLocks is unlocked (Section 3.1: door_locks is optional
// per-door).
func HasPolicy(room *model.Room, doorName string) (model.DoorLockPolicy, bool) {
	p, ok := room.DoorLocks[doorName]
	return p, ok
}
