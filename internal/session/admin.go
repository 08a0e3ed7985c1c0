package session

import (
	"fmt"
	"strings"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/service"
)

// dispatchAdmin routes every command Section 4.E gates on user.is_admin:
// room management, NPC CRUD/generation, kick, purge, safety. Called only
// after dispatch has already confirmed sess's user is an admin.
func (m *Manager) dispatchAdmin(sess *Session, verb, rest string) (service.Result, bool) {
	switch verb {
	case "/room":
		return m.dispatchRoomAdmin(sess, rest)
	case "/npc":
		return m.dispatchNPCAdmin(sess, rest)
	case "/object":
		return m.dispatchObjectAdmin(sess, rest)
	case "/kick":
		return m.handleKick(rest), false
	case "/purge":
		return m.handlePurge(), true
	case "/safety":
		return m.handleSafety(rest), true
	}
	return service.Unhandled(), false
}

func (m *Manager) dispatchRoomAdmin(sess *Session, rest string) (service.Result, bool) {
	sub, arg := splitVerb(rest)
	here := sess.player.RoomID
	switch strings.ToLower(sub) {
	case "create":
		parts := splitPipes(arg)
		if len(parts) != 2 {
			return service.Fail(service.New(service.KindValidation, "usage: /room create <id> | <description>")), false
		}
		return m.rooms.CreateRoom(parts[0], parts[1]), true
	case "setdesc":
		parts := splitPipes(arg)
		if len(parts) != 2 {
			return service.Fail(service.New(service.KindValidation, "usage: /room setdesc <id> | <description>")), false
		}
		return m.rooms.SetDescription(parts[0], parts[1]), true
	case "adddoor":
		parts := splitPipes(arg)
		if len(parts) != 2 {
			return service.Fail(service.New(service.KindValidation, "usage: /room adddoor <name> | <target room>")), false
		}
		r := m.rooms.AddDoor(here, parts[0], parts[1])
		if r.Err == nil {
			m.logEvent("door", fmt.Sprintf("door %q added from %s to %s", parts[0], here, parts[1]))
		}
		return r, true
	case "removedoor":
		name := strings.TrimSpace(arg)
		r := m.rooms.RemoveDoor(here, name)
		if r.Err == nil {
			m.logEvent("door", fmt.Sprintf("door %q removed from %s", name, here))
		}
		return r, true
	case "unlinkdoors":
		parts := splitPipes(arg)
		if len(parts) != 4 {
			return service.Fail(service.New(service.KindValidation, "usage: /room unlinkdoors <room a> | <door a> | <room b> | <door b>")), false
		}
		r := m.rooms.UnlinkDoors(parts[0], parts[1], parts[2], parts[3])
		if r.Err == nil {
			m.logEvent("door", fmt.Sprintf("doors unlinked between %s and %s", parts[0], parts[2]))
		}
		return r, true
	case "linkdoor":
		parts := splitPipes(arg)
		if len(parts) != 4 {
			return service.Fail(service.New(service.KindValidation, "usage: /room linkdoor <room a> | <door a> | <room b> | <door b>")), false
		}
		return m.rooms.LinkDoor(parts[0], parts[1], parts[2], parts[3]), true
	case "setstairs":
		parts := splitPipes(arg)
		if len(parts) != 2 {
			return service.Fail(service.New(service.KindValidation, "usage: /room setstairs <up target> | <down target>")), false
		}
		return m.rooms.SetStairs(here, parts[0], parts[1]), true
	case "lockdoor":
		parts := splitPipes(arg)
		if len(parts) != 2 {
			return service.Fail(service.New(service.KindValidation, "usage: /room lockdoor <door> | <policy>")), false
		}
		return m.rooms.LockDoor(here, parts[0], parts[1]), true
	}
	return service.Fail(service.New(service.KindValidation, fmt.Sprintf("unknown /room subcommand %q", sub))), false
}

func (m *Manager) dispatchNPCAdmin(sess *Session, rest string) (service.Result, bool) {
	sub, arg := splitVerb(rest)
	switch strings.ToLower(sub) {
	case "add":
		parts := splitPipes(arg)
		if len(parts) != 3 {
			return service.Fail(service.New(service.KindValidation, "usage: /npc add <room> | <name> | <description>")), false
		}
		return m.npcs.Add(parts[0], parts[1], parts[2]), true
	case "remove":
		room, name := splitVerb(arg)
		if room == "" || name == "" {
			return service.Fail(service.New(service.KindValidation, "usage: /npc remove <room> <name>")), false
		}
		return m.npcs.Remove(room, name), true
	case "setdesc":
		parts := splitPipes(arg)
		if len(parts) != 2 {
			return service.Fail(service.New(service.KindValidation, "usage: /npc setdesc <name> | <description>")), false
		}
		return m.npcs.SetDescription(parts[0], parts[1]), true
	case "setattr":
		parts := splitPipes(arg)
		if len(parts) != 3 {
			return service.Fail(service.New(service.KindValidation, "usage: /npc setattr <name> | <key> | <value>")), false
		}
		return m.npcs.SetAttribute(parts[0], parts[1], parts[2]), true
	case "setaspect":
		parts := splitPipes(arg)
		if len(parts) != 3 {
			return service.Fail(service.New(service.KindValidation, "usage: /npc setaspect <name> | <key> | <value>")), false
		}
		return m.npcs.SetAspect(parts[0], parts[1], parts[2]), true
	case "setmatrix":
		parts := splitPipes(arg)
		if len(parts) != 3 {
			return service.Fail(service.New(service.KindValidation, "usage: /npc setmatrix <name> | <axis> | <value>")), false
		}
		return m.npcs.SetMatrix(parts[0], parts[1], parts[2]), true
	case "sheet":
		return m.handleNPCSheetView(strings.TrimSpace(arg)), false
	case "generate":
		if !m.cfg.RateEnable || m.limiter.Allow(sess.ID, opNPCPlan) {
			return m.handleNPCGenerate(sess, arg), true
		}
		return service.Fail(service.New(service.KindConstraint, "NPC generation is rate limited, try again shortly")), false
	}
	return service.Fail(service.New(service.KindValidation, fmt.Sprintf("unknown /npc subcommand %q", sub))), false
}

// dispatchObjectAdmin covers the Object service's two admin-facing
// operations: instantiating a template into a room, and retiring a
// template definition (Section 4.F: "create from template ...; delete
// template").
func (m *Manager) dispatchObjectAdmin(sess *Session, rest string) (service.Result, bool) {
	sub, arg := splitVerb(rest)
	switch strings.ToLower(sub) {
	case "create":
		parts := splitPipes(arg)
		room, tmpl := sess.player.RoomID, arg
		if len(parts) == 2 {
			room, tmpl = parts[0], parts[1]
		}
		return m.objects.CreateFromTemplate(room, strings.TrimSpace(tmpl)), true
	case "deletetemplate":
		return m.objects.DeleteTemplate(strings.TrimSpace(arg)), true
	}
	return service.Fail(service.New(service.KindValidation, fmt.Sprintf("unknown /object subcommand %q", sub))), false
}

func (m *Manager) handleNPCSheetView(name string) service.Result {
	sheet, ok := m.doc().Chars.NPCSheets[name]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such NPC %q", name)))
	}
	text := fmt.Sprintf(
		"%s — %s\nHP %d/%d  Morale %d  Str %d Dex %d Int %d Hlth %d",
		sheet.DisplayName, sheet.Description, sheet.Derived.HP, sheet.Derived.MaxHP, sheet.Morale,
		sheet.Attributes.Strength, sheet.Attributes.Dexterity, sheet.Attributes.Intelligence, sheet.Attributes.Health,
	)
	return service.Ok([]service.Emit{{Text: text}}, nil)
}

// handleNPCGenerate parses the optional "<room> | <name hint> | <desc hint>"
// form, defaulting room to the admin's current room when arg is bare.
func (m *Manager) handleNPCGenerate(sess *Session, arg string) service.Result {
	if m.generator == nil || !m.generator.Configured() {
		return service.Fail(service.New(service.KindAdapter, "no AI generator is configured"))
	}
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return m.npcs.Generate(m.generator, sess.player.RoomID, "", "")
	}
	parts := splitPipes(arg)
	room := sess.player.RoomID
	var nameHint, descHint string
	switch len(parts) {
	case 1:
		nameHint = parts[0]
	case 2:
		nameHint, descHint = parts[0], parts[1]
	default:
		room, nameHint, descHint = parts[0], parts[1], parts[2]
	}
	return m.npcs.Generate(m.generator, room, nameHint, descHint)
}

// handleKick disconnects name's live session, if any.
func (m *Manager) handleKick(name string) service.Result {
	name = strings.TrimSpace(name)
	user, ok := m.findUserByName(name)
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such user %q", name)))
	}
	target, online := m.sessionForUser(user.UserID)
	if !online {
		return service.Fail(service.New(service.KindConstraint, fmt.Sprintf("%s is not connected", name)))
	}
	m.send(target.ID, "You have been kicked by an administrator.")
	if m.disconnect != nil {
		m.disconnect(target.ID)
	}
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("%s has been kicked.", name)}}, nil)
}

// handlePurge resets the World (rooms, object templates, relationships,
// factions, NPCs) to a fresh instance, preserving every account, and
// relocates every connected player back into the rebuilt starting room
// (Section 4.F: purge "resets the world to a fresh state"; Section 4.B
// names purge as a flush_all_saves() moment).
func (m *Manager) handlePurge() service.Result {
	doc := m.doc()
	name, desc, conflict, safety := doc.World.Name, doc.World.Description, doc.World.Conflict, doc.World.SafetyLevel

	fresh := model.NewWorld()
	fresh.Name, fresh.Description, fresh.Conflict, fresh.SafetyLevel = name, desc, conflict, safety
	doc.World = fresh
	bootstrap(doc)
	doc.Chars.NPCSheets = make(map[string]*character.CharacterSheet)
	doc.Chars.NPCIDs = make(map[string]model.UUID)

	m.mu.Lock()
	for _, sess := range m.sessions {
		if sess.player == nil {
			continue
		}
		sess.player.RoomID = startRoomID
		doc.World.Rooms[startRoomID].Players[sess.ID] = true
	}
	m.mu.Unlock()

	m.store.SaveWorld(false)
	return service.Ok([]service.Emit{{Text: "The world has been purged."}}, nil)
}

func (m *Manager) handleSafety(level string) service.Result {
	level = strings.ToUpper(strings.TrimSpace(level))
	var sl model.SafetyLevel
	switch level {
	case "G":
		sl = model.SafetyG
	case "PG-13", "PG13":
		sl = model.SafetyPG13
	case "R":
		sl = model.SafetyR
	case "OFF":
		sl = model.SafetyOff
	default:
		return service.Fail(service.New(service.KindValidation, "safety must be one of G, PG-13, R, OFF"))
	}
	m.doc().World.SafetyLevel = sl
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("Safety level set to %s.", sl)}}, nil)
}
