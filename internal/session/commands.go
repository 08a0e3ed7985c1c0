package session

import (
	"fmt"
	"strings"

	"github.com/talgya/mini-world/internal/combat"
	"github.com/talgya/mini-world/internal/resolve"
	"github.com/talgya/mini-world/internal/service"
)

// handleAttack resolves rest fuzzily against the current room's NPCs and
// other players, then applies one hit of combat (Section 4.K).
func (m *Manager) handleAttack(sess *Session, rest string) (service.Result, bool) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return service.Fail(service.New(service.KindValidation, "attack whom?")), false
	}
	cands := m.roomOccupantCandidates(sess.player.RoomID, sess.ID)
	r := resolve.Resolve(rest, cands)
	switch r.Outcome {
	case resolve.NotFound:
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("you don't see %q here", rest))), false
	case resolve.Ambiguous:
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("which one do you mean: %v?", r.Suggestions))), false
	}

	targetName, targetSheet, isPlayer, ok := m.combatantByCandidateID(r.Resolved.ID)
	if !ok {
		return service.Fail(service.New(service.KindNotFound, "they are no longer here")), false
	}

	attacker := combat.Combatant{Name: sess.player.Sheet.DisplayName, Sheet: sess.player.Sheet}
	defender := combat.Combatant{Name: targetName, Sheet: targetSheet}
	weapon := equippedObject(sess.player.Sheet, sess.player.Sheet.EquippedWeapon)
	armor := equippedObject(targetSheet, targetSheet.EquippedArmor)

	result := combat.Attack(attacker, defender, weapon, armor, isPlayer, m.combatRand)
	for i := range result.Broadcasts {
		result.Broadcasts[i].RoomID = sess.player.RoomID
		result.Broadcasts[i].Exclude = sess.ID
	}
	if result.Err == nil {
		m.logEvent("combat", fmt.Sprintf("%s attacked %s", attacker.Name, defender.Name))
	}
	return result, result.Err == nil
}

// handleFlee resolves a random permitted exit and moves sess.player
// through it (Section 4.K).
func (m *Manager) handleFlee(sess *Session) (service.Result, bool) {
	doc := m.doc()
	room, ok := doc.World.Rooms[sess.player.RoomID]
	if !ok {
		return service.Fail(service.New(service.KindIntegrity, "your current room no longer exists")), false
	}
	target, fleeErr := combat.Flee(sess.player.Sheet, room, sess.player.UserID, m.userExists(), m.relationshipOf(), m.combatRand)
	if fleeErr != nil {
		return service.Fail(fleeErr), false
	}
	destRoom, ok := doc.World.Rooms[target]
	if !ok {
		return service.Fail(service.New(service.KindIntegrity, "flee target missing")), false
	}
	delete(room.Players, sess.ID)
	destRoom.Players[sess.ID] = true
	sess.player.RoomID = target
	m.logEvent("combat", fmt.Sprintf("%s fled from %s to %s", sess.player.Sheet.DisplayName, room.ID, target))

	return service.Ok(
		[]service.Emit{{Text: "You flee!"}},
		[]service.Broadcast{
			{RoomID: room.ID, Text: fmt.Sprintf("%s flees!", sess.player.Sheet.DisplayName), Exclude: sess.ID},
			{RoomID: target, Text: fmt.Sprintf("%s stumbles in, fleeing.", sess.player.Sheet.DisplayName), Exclude: sess.ID},
		},
	), true
}

// interactionVerbs lists the natural-language (unprefixed) verbs Section
// 4.F's interaction and movement services recognize. The list is tried in
// order; no verb here is a word-prefix of another, so the order does not
// change which verb matches.
var interactionVerbs = []string{
	"pick up", "drop", "open", "search", "wield", "eat", "drink", "craft", "claim", "unclaim",
	"move through", "go",
}

// dispatchInteraction handles every natural-language command. handled is
// false when line matches none of interactionVerbs, so the caller falls
// through to treating it as dialogue.
func (m *Manager) dispatchInteraction(sess *Session, line string) (result service.Result, mutated bool, handled bool) {
	arg, verb, ok := stripVerbs(line, interactionVerbs...)
	if !ok {
		return service.Result{}, false, false
	}
	roomID := sess.player.RoomID
	sheet := sess.player.Sheet

	switch verb {
	case "pick up":
		return m.interactions.PickUp(roomID, sheet, arg), true, true
	case "drop":
		return m.interactions.Drop(roomID, sheet, arg), true, true
	case "open":
		return m.interactions.Open(roomID, arg), false, true
	case "search":
		return m.interactions.Search(roomID, sheet, arg), true, true
	case "wield":
		return m.interactions.Wield(sheet, arg), true, true
	case "eat":
		return m.interactions.Eat(roomID, sheet, arg), true, true
	case "drink":
		return m.interactions.Drink(roomID, sheet, arg), true, true
	case "craft":
		return m.interactions.CraftAtSpot(roomID, sheet, arg), true, true
	case "claim":
		return m.interactions.Claim(roomID, sess.player.UserID, arg), true, true
	case "unclaim":
		return m.interactions.Unclaim(roomID, sess.player.UserID, arg), true, true
	case "go", "move through":
		r := m.movement.Traverse(sess.ID, roomID, sess.player.UserID, sheet, arg, m.userExists(), m.relationshipOf())
		if r.Err == nil {
			for _, b := range r.Broadcasts {
				if b.RoomID != roomID {
					sess.player.RoomID = b.RoomID
				}
			}
		}
		return r, true, true
	}
	return service.Result{}, false, false
}
