package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/locks"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/resolve"
	"github.com/talgya/mini-world/internal/service"
)

// adminVerbs names the slash-verbs gated on user.is_admin before dispatch:
// room management, NPC creation and generation, objects, kick, purge and
// safety. /auth promote|demote is gated separately, in setAdmin.
var adminVerbs = map[string]bool{
	"/room":   true,
	"/npc":    true,
	"/object": true,
	"/kick":   true,
	"/purge":  true,
	"/safety": true,
}

// dispatch is the Section 4.E ordered router chain for an already
// authenticated session. The first router that claims the command wins;
// a claimed, error-free result triggers a debounced save.
func (m *Manager) dispatch(sess *Session, line string) service.Result {
	verb, rest := splitVerb(line)
	lowerVerb := strings.ToLower(verb)

	if r, ok := m.alwaysAllowed(sess, lowerVerb, rest); ok {
		return r
	}

	if sess.player.Sheet.IsDead {
		return service.Fail(service.New(service.KindPermission, "the dead may only look, /help, /who, or /quit"))
	}

	if strings.HasPrefix(lowerVerb, "/auth") {
		res := m.handleAuthAdmin(sess, rest)
		if res.requireAdmin {
			return service.Fail(service.New(service.KindPermission, "admin privileges required"))
		}
		if res.errText != "" {
			return service.Fail(service.New(service.KindNotFound, res.errText))
		}
		if res.handled {
			return service.Ok([]service.Emit{{Text: res.text}}, nil)
		}
	}

	if adminVerbs[lowerVerb] {
		if !m.isAdmin(sess) {
			return service.Fail(service.New(service.KindPermission, "admin privileges required"))
		}
		r, mutated := m.dispatchAdmin(sess, lowerVerb, rest)
		return m.maybeSave(r, mutated)
	}

	if lowerVerb == "/rename" || lowerVerb == "/describe" || lowerVerb == "/sheet" {
		r, mutated := m.dispatchPlayerMisc(sess, lowerVerb, rest)
		return m.maybeSave(r, mutated)
	}

	if lowerVerb == "/flee" {
		r, mutated := m.handleFlee(sess)
		return m.maybeSave(r, mutated)
	}

	if lowerVerb == "/attack" {
		r, mutated := m.handleAttack(sess, rest)
		return m.maybeSave(r, mutated)
	}

	if strings.HasPrefix(lowerVerb, "/trade") {
		r, mutated := m.dispatchTrade(sess, rest)
		return m.maybeSave(r, mutated)
	}

	if r, mutated, handled := m.dispatchInteraction(sess, line); handled {
		return m.maybeSave(r, mutated)
	}

	return m.handleSay(sess, line)
}

func (m *Manager) maybeSave(r service.Result, mutated bool) service.Result {
	if mutated && r.Err == nil {
		m.store.SaveWorld(true)
	}
	return r
}

// alwaysAllowed handles the three commands a dead character may still
// issue, plus /quit (Section 8.1 property 10).
func (m *Manager) alwaysAllowed(sess *Session, verb, rest string) (service.Result, bool) {
	switch verb {
	case "look", "l":
		return m.handleLook(sess), true
	case "/help":
		return service.Ok([]service.Emit{{Text: helpText}}, nil), true
	case "/who":
		return m.handleWho(), true
	case "/quit":
		m.send(sess.ID, "Goodbye.")
		if m.disconnect != nil {
			m.disconnect(sess.ID)
		}
		return service.Ok(nil, nil), true
	}
	return service.Result{}, false
}

const helpText = "Commands: look, /rename, /describe, /sheet, /who, /quit, /flee, /attack <target>, " +
	"pick up/drop/open/search/wield/eat/drink/craft/claim/unclaim <object>, go <exit>. " +
	"Admins: /room, /npc, /object, /kick, /purge, /safety, /auth promote|demote|list_admins."

func (m *Manager) handleWho() service.Result {
	doc := m.doc()
	var lines []string
	m.mu.Lock()
	for _, s := range m.sessions {
		if s.player == nil {
			continue
		}
		since := "just now"
		if user, ok := doc.Chars.Users[s.player.UserID]; ok && !user.LastSeen.IsZero() {
			since = humanize.Time(user.LastSeen)
		}
		lines = append(lines, fmt.Sprintf("%s (connected %s)", s.player.Sheet.DisplayName, since))
	}
	m.mu.Unlock()
	sort.Strings(lines)
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("Online: %v", lines)}}, nil)
}

func (m *Manager) handleLook(sess *Session) service.Result {
	room, ok := m.doc().World.Rooms[sess.player.RoomID]
	if !ok {
		return service.Fail(service.New(service.KindIntegrity, "your current room no longer exists"))
	}
	var objs, npcs, players, exits []string
	for _, o := range room.Objects {
		objs = append(objs, o.Name)
	}
	for name := range room.NPCs {
		npcs = append(npcs, name)
	}
	for sid := range room.Players {
		if sid == sess.ID {
			continue
		}
		if other, ok := m.sessions[sid]; ok && other.player != nil {
			players = append(players, other.player.Sheet.DisplayName)
		}
	}
	for name := range room.Doors {
		exits = append(exits, name)
	}
	if room.StairsUp != "" {
		exits = append(exits, "stairs up")
	}
	if room.StairsDown != "" {
		exits = append(exits, "stairs down")
	}
	sort.Strings(objs)
	sort.Strings(npcs)
	sort.Strings(players)
	sort.Strings(exits)

	text := fmt.Sprintf("%s\nObjects: %v\nNPCs: %v\nAlso here: %v\nExits: %v",
		room.Description, objs, npcs, players, exits)
	return service.Ok([]service.Emit{{Text: text}}, nil)
}

func (m *Manager) dispatchPlayerMisc(sess *Session, verb, rest string) (service.Result, bool) {
	switch verb {
	case "/rename":
		name := strings.TrimSpace(rest)
		if name == "" {
			return service.Fail(service.New(service.KindValidation, "a name is required")), false
		}
		if other, taken := m.findUserByName(name); taken && other.UserID != sess.player.UserID {
			return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("the name %q is already taken", name))), false
		}
		user := m.doc().Chars.Users[sess.player.UserID]
		user.DisplayName = name
		sess.player.Sheet.DisplayName = name
		return service.Ok([]service.Emit{{Text: "Name updated."}}, nil), true
	case "/describe":
		sess.player.Sheet.Description = rest
		return service.Ok([]service.Emit{{Text: "Description updated."}}, nil), true
	case "/sheet":
		return m.handleSheetView(sess), false
	}
	return service.Unhandled(), false
}

func (m *Manager) handleSheetView(sess *Session) service.Result {
	sh := sess.player.Sheet
	joined := "an unknown time ago"
	if user, ok := m.doc().Chars.Users[sess.player.UserID]; ok && !user.CreatedAt.IsZero() {
		joined = humanize.Time(user.CreatedAt)
	}
	text := fmt.Sprintf(
		"%s — %s\nPlaying since %s\nHP %d/%d  Morale %d  Str %d Dex %d Int %d Hlth %d\nHunger %.0f Thirst %.0f Social %.0f Sleep %.0f",
		sh.DisplayName, sh.Description, joined, sh.Derived.HP, sh.Derived.MaxHP, sh.Morale,
		sh.Attributes.Strength, sh.Attributes.Dexterity, sh.Attributes.Intelligence, sh.Attributes.Health,
		sh.Needs.Hunger, sh.Needs.Thirst, sh.Needs.Socialization, sh.Needs.Sleep,
	)
	return service.Ok([]service.Emit{{Text: text}}, nil)
}

func (m *Manager) handleSay(sess *Session, line string) service.Result {
	return service.Ok(nil, []service.Broadcast{
		{RoomID: sess.player.RoomID, Text: fmt.Sprintf("%s says: %s", sess.player.Sheet.DisplayName, line), Exclude: sess.ID},
	})
}

func (m *Manager) userExists() locks.UserExists {
	doc := m.doc()
	return func(userID string) bool { _, ok := doc.Chars.Users[userID]; return ok }
}

func (m *Manager) relationshipOf() locks.RelationshipOf {
	doc := m.doc()
	return func(actorUserID, otherUserID string) string {
		rels, ok := doc.World.Relationships[actorUserID]
		if !ok {
			return ""
		}
		return rels[otherUserID]
	}
}

// roomOccupantCandidates lists every NPC and other live player in roomID,
// for the fuzzy resolver powering /attack.
func (m *Manager) roomOccupantCandidates(roomID, excludeSessionID string) []resolve.Candidate {
	room := m.doc().World.Rooms[roomID]
	var cands []resolve.Candidate
	for name := range room.NPCs {
		cands = append(cands, resolve.Candidate{ID: "npc:" + name, Name: name})
	}
	for sid := range room.Players {
		if sid == excludeSessionID {
			continue
		}
		if other, ok := m.sessions[sid]; ok && other.player != nil {
			cands = append(cands, resolve.Candidate{ID: "player:" + other.player.UserID, Name: other.player.Sheet.DisplayName})
		}
	}
	return cands
}

func (m *Manager) combatantByCandidateID(id string) (name string, sheet *character.CharacterSheet, isPlayer bool, ok bool) {
	doc := m.doc()
	switch {
	case strings.HasPrefix(id, "npc:"):
		name = id[len("npc:"):]
		sheet, ok = doc.Chars.NPCSheets[name]
		return name, sheet, false, ok
	case strings.HasPrefix(id, "player:"):
		userID := id[len("player:"):]
		user, ok2 := doc.Chars.Users[userID]
		if !ok2 {
			return "", nil, true, false
		}
		return user.DisplayName, user.Sheet, true, true
	default:
		return "", nil, false, false
	}
}

func equippedObject(sheet *character.CharacterSheet, id model.UUID) *model.Object {
	if id == "" {
		return nil
	}
	idx := sheet.Inventory.Find(id)
	if idx == -1 {
		return nil
	}
	return sheet.Inventory[idx]
}
