package transport

import (
	"encoding/json"
	"testing"

	"github.com/talgya/mini-world/internal/service"
)

func newFakeSession(id string) *session {
	return &session{id: id, send: make(chan []byte, 4)}
}

func TestEncodeMessageWrapsInEnvelope(t *testing.T) {
	frame, err := encodeMessage(service.Payload{Type: service.PayloadSystem, Content: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("expected valid envelope JSON: %v", err)
	}
	if env.Event != "message" {
		t.Fatalf("expected event 'message', got %q", env.Event)
	}
	var payload service.Payload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("expected a decodable payload: %v", err)
	}
	if payload.Content != "hello" {
		t.Fatalf("expected content preserved, got %q", payload.Content)
	}
}

func TestSendDeliversToRegisteredSession(t *testing.T) {
	tr := New()
	s := newFakeSession("sess-1")
	tr.sessions["sess-1"] = s

	tr.Send("sess-1", service.Payload{Type: service.PayloadSystem, Content: "hi"})

	select {
	case frame := <-s.send:
		var env envelope
		json.Unmarshal(frame, &env)
		if env.Event != "message" {
			t.Fatalf("expected a message event, got %q", env.Event)
		}
	default:
		t.Fatal("expected a frame queued on the session's send channel")
	}
}

func TestSendToUnknownSessionIsNoOp(t *testing.T) {
	tr := New()
	tr.Send("ghost", service.Payload{Content: "hi"})
}

func TestSendDropsWhenBufferFull(t *testing.T) {
	tr := New()
	s := &session{id: "sess-1", send: make(chan []byte, 1)}
	tr.sessions["sess-1"] = s
	tr.Send("sess-1", service.Payload{Content: "one"})
	tr.Send("sess-1", service.Payload{Content: "two"})

	if len(s.send) != 1 {
		t.Fatalf("expected the buffer to stay at capacity 1, got %d", len(s.send))
	}
}

func TestBroadcastDeliversToAllListedSessions(t *testing.T) {
	tr := New()
	a := newFakeSession("a")
	b := newFakeSession("b")
	tr.sessions["a"] = a
	tr.sessions["b"] = b

	tr.Broadcast([]string{"a", "b", "ghost"}, service.Payload{Content: "announce"})

	if len(a.send) != 1 || len(b.send) != 1 {
		t.Fatal("expected both registered sessions to receive the broadcast")
	}
}

func TestCloseRemovesSessionAndClosesChannel(t *testing.T) {
	tr := New()
	s := newFakeSession("sess-1")
	var disconnected string
	tr.OnDisconnect = func(id string) { disconnected = id }
	tr.sessions["sess-1"] = s

	tr.Close("sess-1")

	if _, ok := tr.sessions["sess-1"]; ok {
		t.Fatal("expected the session removed from the registry")
	}
	if _, ok := <-s.send; ok {
		t.Fatal("expected the send channel closed")
	}
	if disconnected != "sess-1" {
		t.Fatalf("expected OnDisconnect called with the session id, got %q", disconnected)
	}
}

func TestCloseUnknownSessionIsNoOp(t *testing.T) {
	tr := New()
	called := false
	tr.OnDisconnect = func(string) { called = true }
	tr.Close("ghost")
	if called {
		t.Fatal("expected OnDisconnect not called for an unknown session")
	}
}

func TestCloseTwiceIsSafe(t *testing.T) {
	tr := New()
	s := newFakeSession("sess-1")
	tr.sessions["sess-1"] = s
	tr.Close("sess-1")
	tr.Close("sess-1")
}
