package session

import (
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/mini-world/internal/character"
	"github.com/talgya/mini-world/internal/config"
	"github.com/talgya/mini-world/internal/llmadapter"
	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/mutate"
	"github.com/talgya/mini-world/internal/persist"
	"github.com/talgya/mini-world/internal/service"
	"github.com/talgya/mini-world/internal/worldtick"
)

// startRoomID is the id of the room every freshly created or logged-in
// Player lands in. Room.players is an ephemeral session-id set (never
// persisted as "the user's last room"), so there is nothing to restore on
// reconnect — Scenario 2 names this room "start" directly.
const startRoomID = "start"

// authStage steps through the Section 4.E login/create wizard one line at
// a time when the one-line pipe-delimited form isn't used.
type authStage int

const (
	stageIdle authStage = iota
	stageAwaitCreateName
	stageAwaitCreatePassword
	stageAwaitCreateDescription
	stageAwaitLoginName
	stageAwaitLoginPassword
)

type pendingAuth struct {
	stage    authStage
	name     string
	password string
}

// Session is one connected, possibly-not-yet-authenticated client.
type Session struct {
	ID      string
	pending pendingAuth
	player  *character.Player // nil until auth completes
}

// Manager is the Section 4.E dispatcher: it owns every live Session, the
// world-mutation services, and the rate limiter, and is the sole caller of
// the persistence façade's debounced save on behalf of commands.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store      *persist.Store
	sender     service.Sender
	cfg        config.Config
	generator  *llmadapter.Adapter
	scheduler  *worldtick.Scheduler
	limiter    *Limiter
	disconnect func(sessionID string)

	rooms        *mutate.RoomService
	objects      *mutate.ObjectService
	npcs         *mutate.NPCService
	interactions *mutate.InteractionService
	movement     *mutate.MovementService
	trades       *mutate.TradeService

	combatRand *rand.Rand
}

// NewManager wires every world-mutation service over store's document and
// bootstraps a starting room if the document is empty (a brand new world).
func NewManager(store *persist.Store, sender service.Sender, cfg config.Config, generator *llmadapter.Adapter, scheduler *worldtick.Scheduler, disconnect func(sessionID string)) *Manager {
	doc := store.Document()
	bootstrap(doc)

	return &Manager{
		sessions:     make(map[string]*Session),
		store:        store,
		sender:       sender,
		cfg:          cfg,
		generator:    generator,
		scheduler:    scheduler,
		limiter:      NewLimiter(),
		disconnect:   disconnect,
		rooms:        mutate.NewRoomService(doc),
		objects:      mutate.NewObjectService(doc),
		npcs:         mutate.NewNPCService(doc),
		interactions: mutate.NewInteractionService(doc),
		movement:     mutate.NewMovementService(doc),
		trades:       mutate.NewTradeService(doc),
		combatRand:   rand.New(rand.NewSource(1)),
	}
}

func bootstrap(doc *persist.Document) {
	if _, ok := doc.World.Rooms[startRoomID]; ok {
		return
	}
	doc.World.Rooms[startRoomID] = model.NewRoom(startRoomID, model.UUID(uuid.NewString()), "A plain room with nowhere in particular to be.")
}

func (m *Manager) doc() *persist.Document { return m.store.Document() }

// logEvent appends one entry to the archival event log, tagged with the
// scheduler's current tick (0 if no scheduler is wired, as in tests).
// Best-effort per persist.Store.LogEvent's own contract: a failure here is
// logged, never surfaced to the player whose command triggered it.
func (m *Manager) logEvent(category, description string) {
	var tick uint64
	if m.scheduler != nil {
		tick = m.scheduler.TickCount
	}
	if err := m.store.LogEvent(tick, category, description); err != nil {
		slog.Warn("failed to log archival event", "category", category, "error", err)
	}
}

// HandleConnect registers a freshly opened transport session and starts it
// in the auth wizard.
func (m *Manager) HandleConnect(sessionID string) {
	m.mu.Lock()
	m.sessions[sessionID] = &Session{ID: sessionID}
	m.mu.Unlock()
	m.send(sessionID, "Welcome. Type create or login to begin.")
}

// HandleDisconnect tears down a session: leaves its room, cancels any
// trade it was party to, and forgets its rate-limit buckets.
func (m *Manager) HandleDisconnect(sessionID string) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	m.limiter.Forget(sessionID)
	if sess.player == nil {
		return
	}
	if room, ok := m.doc().World.Rooms[sess.player.RoomID]; ok {
		delete(room.Players, sessionID)
	}
	if user, ok := m.doc().Chars.Users[sess.player.UserID]; ok {
		user.LastSeen = time.Now()
	}
	for id, t := range m.trades.Trades {
		if t.UserA == sess.player.UserID || t.UserB == sess.player.UserID {
			delete(m.trades.Trades, id)
		}
	}
	m.store.SaveWorld(true)
}

// HandleLine is the Section 6.1 receive() consumer: one decoded client
// message, routed through auth or the command dispatcher.
func (m *Manager) HandleLine(sessionID, raw string) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return
	}

	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}
	if len(line) > m.cfg.MaxMessageLen {
		m.sendError(sessionID, "message too long")
		return
	}

	if sess.player == nil {
		if m.cfg.RateEnable && !m.limiter.Allow(sessionID, opAuth) {
			m.sendError(sessionID, "too many attempts, slow down")
			return
		}
		m.handleAuthLine(sess, line)
		return
	}

	if m.cfg.RateEnable && !m.limiter.Allow(sessionID, opMessage) {
		m.sendError(sessionID, "you're doing that too fast")
		return
	}

	result := m.dispatch(sess, line)
	service.Deliver(m.sender, m.occupants, sessionID, result)
}

// occupants returns the live session ids currently in roomID, for
// service.Deliver's broadcast routing.
func (m *Manager) occupants(roomID string) []string {
	room, ok := m.doc().World.Rooms[roomID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(room.Players))
	for id := range room.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) send(sessionID, text string) {
	m.sender.Send(sessionID, service.Payload{Type: service.PayloadSystem, Content: text})
}

func (m *Manager) sendError(sessionID, text string) {
	m.sender.Send(sessionID, service.Payload{Type: service.PayloadError, Content: text})
}

// findUserByName looks up a User by display name — the auth wizard's and
// admin commands' sole means of resolving a name to an account, since
// display names (not user-ids) are what players type.
func (m *Manager) findUserByName(name string) (*character.User, bool) {
	for _, u := range m.doc().Chars.Users {
		if strings.EqualFold(u.DisplayName, name) {
			return u, true
		}
	}
	return nil, false
}

func (m *Manager) sessionForUser(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.player != nil && s.player.UserID == userID {
			return s, true
		}
	}
	return nil, false
}
