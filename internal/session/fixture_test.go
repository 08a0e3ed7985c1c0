package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/mini-world/internal/config"
	"github.com/talgya/mini-world/internal/llmadapter"
	"github.com/talgya/mini-world/internal/persist"
	"github.com/talgya/mini-world/internal/service"
)

// fakeSender records every Send/Broadcast call so tests can assert on what
// was actually delivered, standing in for internal/transport.Transport.
type fakeSender struct {
	sent      map[string][]service.Payload
	broadcast []broadcastCall
}

type broadcastCall struct {
	sessionIDs []string
	payload    service.Payload
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[string][]service.Payload)}
}

func (f *fakeSender) Send(sessionID string, p service.Payload) {
	f.sent[sessionID] = append(f.sent[sessionID], p)
}

func (f *fakeSender) Broadcast(sessionIDs []string, p service.Payload) {
	f.broadcast = append(f.broadcast, broadcastCall{sessionIDs: sessionIDs, payload: p})
}

func (f *fakeSender) last(sessionID string) (service.Payload, bool) {
	msgs := f.sent[sessionID]
	if len(msgs) == 0 {
		return service.Payload{}, false
	}
	return msgs[len(msgs)-1], true
}

func newTestManager(t *testing.T) (*Manager, *fakeSender) {
	t.Helper()
	dir := t.TempDir()
	store, err := persist.Open(filepath.Join(dir, "world.json"), filepath.Join(dir, "archive.db"), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	sender := newFakeSender()
	cfg := config.Config{MaxMessageLen: 500, RateEnable: false}
	gen := llmadapter.New(llmadapter.Config{})
	m := NewManager(store, sender, cfg, gen, nil, func(string) {})
	t.Cleanup(m.limiter.Close)
	return m, sender
}

func newTestManagerWithDisconnect(t *testing.T, disconnect func(sessionID string)) (*Manager, *fakeSender) {
	t.Helper()
	dir := t.TempDir()
	store, err := persist.Open(filepath.Join(dir, "world.json"), filepath.Join(dir, "archive.db"), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	sender := newFakeSender()
	cfg := config.Config{MaxMessageLen: 500, RateEnable: false}
	gen := llmadapter.New(llmadapter.Config{})
	m := NewManager(store, sender, cfg, gen, nil, disconnect)
	t.Cleanup(m.limiter.Close)
	return m, sender
}

// connectAndCreate drives a brand new session through HandleConnect and a
// one-line /auth create, returning the bound Session.
func connectAndCreate(t *testing.T, m *Manager, sessionID, name, password string) *Session {
	t.Helper()
	m.HandleConnect(sessionID)
	m.HandleLine(sessionID, "/auth create "+name+" | "+password+" | a test character")
	m.mu.Lock()
	sess := m.sessions[sessionID]
	m.mu.Unlock()
	if sess == nil || sess.player == nil {
		t.Fatalf("expected %s bound to a player after create", sessionID)
	}
	return sess
}
