package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/mini-world/internal/auth"
	"github.com/talgya/mini-world/internal/character"
)

// handleAuthLine drives the Section 4.E login/create wizard for a
// not-yet-authenticated session: either a one-line pipe-delimited form, or
// a bare "create"/"login" that steps through the fields one prompt at a
// time.
func (m *Manager) handleAuthLine(sess *Session, line string) {
	lower := strings.ToLower(line)

	if sess.pending.stage == stageIdle {
		switch {
		case strings.HasPrefix(lower, "/auth create "):
			m.createOneLiner(sess, line[len("/auth create "):])
		case strings.HasPrefix(lower, "/auth login "):
			m.loginOneLiner(sess, line[len("/auth login "):])
		case lower == "create" || lower == "/auth create":
			sess.pending = pendingAuth{stage: stageAwaitCreateName}
			m.send(sess.ID, "What name would you like?")
		case lower == "login" || lower == "/auth login":
			sess.pending = pendingAuth{stage: stageAwaitLoginName}
			m.send(sess.ID, "Name?")
		default:
			m.sendError(sess.ID, "Type create or login to begin.")
		}
		return
	}

	switch sess.pending.stage {
	case stageAwaitCreateName:
		sess.pending.name = line
		sess.pending.stage = stageAwaitCreatePassword
		m.send(sess.ID, "Password?")
	case stageAwaitCreatePassword:
		sess.pending.password = line
		sess.pending.stage = stageAwaitCreateDescription
		m.send(sess.ID, "Describe your character.")
	case stageAwaitCreateDescription:
		name, password := sess.pending.name, sess.pending.password
		sess.pending = pendingAuth{}
		m.completeCreate(sess, name, password, line)
	case stageAwaitLoginName:
		sess.pending.name = line
		sess.pending.stage = stageAwaitLoginPassword
		m.send(sess.ID, "Password?")
	case stageAwaitLoginPassword:
		name := sess.pending.name
		sess.pending = pendingAuth{}
		m.completeLogin(sess, name, line)
	}
}

func (m *Manager) createOneLiner(sess *Session, rest string) {
	parts := splitPipes(rest)
	if len(parts) != 3 {
		m.sendError(sess.ID, "usage: /auth create <name> | <password> | <description>")
		return
	}
	m.completeCreate(sess, parts[0], parts[1], parts[2])
}

func (m *Manager) loginOneLiner(sess *Session, rest string) {
	parts := splitPipes(rest)
	if len(parts) != 2 {
		m.sendError(sess.ID, "usage: /auth login <name> | <password>")
		return
	}
	m.completeLogin(sess, parts[0], parts[1])
}

func (m *Manager) completeCreate(sess *Session, name, password, description string) {
	name = strings.TrimSpace(name)
	if name == "" {
		m.sendError(sess.ID, "a name is required")
		return
	}
	if _, taken := m.findUserByName(name); taken {
		m.sendError(sess.ID, fmt.Sprintf("the name %q is already taken", name))
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		m.sendError(sess.ID, "could not create account")
		return
	}

	doc := m.doc()
	user := &character.User{
		UserID:           uuid.NewString(),
		DisplayName:      name,
		PasswordVerifier: hash,
		IsAdmin:          len(doc.Chars.Users) == 0, // Section 3.1: "the first user created is automatically admin"
		Sheet:            character.NewCharacterSheet(name, description),
		CreatedAt:        time.Now(),
	}
	doc.Chars.Users[user.UserID] = user

	m.bindPlayer(sess, user)
	m.store.SaveWorld(false) // account creation is a critical flush moment (Section 4.B)

	m.send(sess.ID, fmt.Sprintf("Welcome, [b]%s[/b]. Your account has been created.", name))
}

func (m *Manager) completeLogin(sess *Session, name, password string) {
	user, ok := m.findUserByName(name)
	if !ok || !auth.VerifyPassword(user.PasswordVerifier, password) {
		m.sendError(sess.ID, "no such account or wrong password")
		return
	}
	if _, already := m.sessionForUser(user.UserID); already {
		m.sendError(sess.ID, "that account is already connected")
		return
	}
	m.bindPlayer(sess, user)
	m.send(sess.ID, fmt.Sprintf("Welcome back, [b]%s[/b].", user.DisplayName))
}

// bindPlayer creates the ephemeral Player binding session to user and
// places it in the starting room.
func (m *Manager) bindPlayer(sess *Session, user *character.User) {
	user.LastSeen = time.Now()
	sess.player = &character.Player{
		SessionID: sess.ID,
		UserID:    user.UserID,
		RoomID:    startRoomID,
		Sheet:     user.Sheet,
	}
	if room, ok := m.doc().World.Rooms[startRoomID]; ok {
		room.Players[sess.ID] = true
	}
}

// handleAuthAdmin implements the post-login "/auth promote|demote|list_admins"
// commands (Section 6.4) — distinct from the pre-login create/login wizard
// above, routed here once a session already has a bound Player.
func (m *Manager) handleAuthAdmin(sess *Session, rest string) (result authAdminResult) {
	verb, arg := splitVerb(rest)
	switch strings.ToLower(verb) {
	case "list_admins":
		var names []string
		for _, u := range m.doc().Chars.Users {
			if u.IsAdmin {
				names = append(names, u.DisplayName)
			}
		}
		return authAdminResult{text: fmt.Sprintf("Admins: %v", names), handled: true}
	case "promote":
		return m.setAdmin(arg, true, sess)
	case "demote":
		return m.setAdmin(arg, false, sess)
	default:
		return authAdminResult{}
	}
}

type authAdminResult struct {
	handled    bool
	requireAdmin bool
	text       string
	errText    string
}

func (m *Manager) setAdmin(name string, admin bool, sess *Session) authAdminResult {
	if !m.isAdmin(sess) {
		return authAdminResult{handled: true, requireAdmin: true}
	}
	user, ok := m.findUserByName(name)
	if !ok {
		return authAdminResult{handled: true, errText: fmt.Sprintf("no such user %q", name)}
	}
	user.IsAdmin = admin
	verb := "promoted"
	if !admin {
		verb = "demoted"
	}
	return authAdminResult{handled: true, text: fmt.Sprintf("%s has been %s.", user.DisplayName, verb)}
}

func (m *Manager) isAdmin(sess *Session) bool {
	if sess.player == nil {
		return false
	}
	user, ok := m.doc().Chars.Users[sess.player.UserID]
	return ok && user.IsAdmin
}
