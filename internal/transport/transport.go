// Package transport implements the Section 6.1 framed-event channel over
// WebSocket: receive/send/broadcast/close. Grounded on the
// 1kaius1-MUD-Engine reference server (register/unregister channels,
// per-client buffered send channel, read/write pump goroutine pair,
// ping/pong keepalive) — generalized from that server's line-oriented
// telnet-over-websocket framing to the spec's named-event envelope.
package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/talgya/mini-world/internal/service"
)

const (
	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// envelope is the wire shape for both directions: client sends
// {"event":"message_to_server","payload":{"content":"..."}}, the server
// sends {"event":"message","payload":{"type","content","name"}}
// (Section 6.1/6.2).
type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// InboundEvent is one decoded client->server frame, as returned by
// receive() (Section 6.1).
type InboundEvent struct {
	SessionID string
	EventName string
	Content   string
}

type session struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	closed bool
}

// Transport is the Section 6.1 collaborator: it owns every live
// connection and exposes the four-function contract the core needs. The
// only client->server event it forwards is message_to_server; anything
// else is dropped without logging (only malformed frames are logged).
type Transport struct {
	mu       sync.RWMutex
	sessions map[string]*session

	Incoming chan InboundEvent

	// OnConnect and OnDisconnect, if set, are called synchronously as each
	// session opens and closes — the core's only notice of connection
	// lifecycle outside of Incoming frames (Section 6.1: "connect/
	// disconnect are distinct events from message frames").
	OnConnect    func(sessionID string)
	OnDisconnect func(sessionID string)
}

// New returns a Transport ready to accept connections via Handler.
func New() *Transport {
	return &Transport{
		sessions: make(map[string]*session),
		Incoming: make(chan InboundEvent, 256),
	}
}

// Handler upgrades an HTTP request to a WebSocket connection and starts
// its read/write pumps under a freshly minted session id.
func (t *Transport) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	s := &session{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 256),
	}

	t.mu.Lock()
	t.sessions[s.id] = s
	t.mu.Unlock()

	go t.writePump(s)
	go t.readPump(s)

	if t.OnConnect != nil {
		t.OnConnect(s.id)
	}
}

func (t *Transport) readPump(s *session) {
	defer func() {
		t.Close(s.id)
	}()
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			slog.Warn("malformed client frame", "session", s.id, "error", err)
			continue
		}
		if env.Event != "message_to_server" {
			continue
		}
		var body struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(env.Payload, &body); err != nil {
			continue
		}
		t.Incoming <- InboundEvent{SessionID: s.id, EventName: env.Event, Content: body.Content}
	}
}

func (t *Transport) writePump(s *session) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send implements service.Sender and the Section 6.1 send() primitive.
func (t *Transport) Send(sessionID string, p service.Payload) {
	t.mu.RLock()
	s, ok := t.sessions[sessionID]
	t.mu.RUnlock()
	if !ok {
		return
	}
	frame, err := encodeMessage(p)
	if err != nil {
		return
	}
	select {
	case s.send <- frame:
	default:
		slog.Warn("session send buffer full, dropping message", "session", sessionID)
	}
}

// Broadcast implements service.Sender and the Section 6.1 broadcast()
// primitive.
func (t *Transport) Broadcast(sessionIDs []string, p service.Payload) {
	frame, err := encodeMessage(p)
	if err != nil {
		return
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range sessionIDs {
		s, ok := t.sessions[id]
		if !ok {
			continue
		}
		select {
		case s.send <- frame:
		default:
			slog.Warn("session send buffer full, dropping broadcast", "session", id)
		}
	}
}

// Close implements the Section 6.1 close() primitive: it tears down the
// session's send channel (stopping its write pump) and drops it from the
// registry.
func (t *Transport) Close(sessionID string) {
	t.mu.Lock()
	s, ok := t.sessions[sessionID]
	if ok {
		delete(t.sessions, sessionID)
	}
	if ok && !s.closed {
		s.closed = true
	} else {
		ok = false
	}
	t.mu.Unlock()
	if !ok {
		return
	}
	close(s.send)
	if t.OnDisconnect != nil {
		t.OnDisconnect(sessionID)
	}
}

func encodeMessage(p service.Payload) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Event: "message", Payload: body})
}
