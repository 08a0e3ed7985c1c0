package service

// PayloadType is the wire-level message classification (Section 6.2).
type PayloadType string

const (
	PayloadSystem PayloadType = "system"
	PayloadPlayer PayloadType = "player"
	PayloadNPC    PayloadType = "npc"
	PayloadError  PayloadType = "error"
)

// Payload is the server->client message shape (Section 6.2).
type Payload struct {
	Type    PayloadType `json:"type"`
	Content string      `json:"content"`
	Name    string      `json:"name,omitempty"`
}

// Sender delivers payloads to sessions; implemented by internal/transport.
type Sender interface {
	Send(sessionID string, p Payload)
	Broadcast(sessionIDs []string, p Payload)
}

// Router is one service function in the dispatch chain (Section 4.D,
// Section 4.E): given the actor's session id and the parsed command line,
// it returns a Result. Broadcast delivery is done by Deliver, whose
// occupants callback resolves a room id to the live session ids in it.
type Router func(actorSessionID, line string) Result

// Deliver applies the Section 4.D routing rule to a single Result: if not
// handled, the caller should try the next router (this function does
// nothing and returns false); otherwise it emits to the actor and
// broadcasts to room occupants (excluding the actor), converting an error
// into a single type=error emit.
func Deliver(sender Sender, occupants func(roomID string) []string, actorSessionID string, r Result) bool {
	if !r.Handled {
		return false
	}
	if r.Err != nil {
		sender.Send(actorSessionID, Payload{Type: PayloadError, Content: errorMessage(r.Err)})
		return true
	}
	for _, e := range r.Emits {
		sender.Send(actorSessionID, Payload{Type: PayloadSystem, Content: e.Text})
	}
	for _, b := range r.Broadcasts {
		targets := occupants(b.RoomID)
		filtered := targets[:0:0]
		for _, sid := range targets {
			if sid == b.Exclude {
				continue
			}
			filtered = append(filtered, sid)
		}
		sender.Broadcast(filtered, Payload{Type: PayloadSystem, Content: b.Text})
	}
	return true
}

// errorMessage extracts a player-facing string from err, per the Section 7
// surfacing rules: most kinds show Message directly; AdapterError and
// PersistenceError are never surfaced verbatim (callers should not reach
// Deliver with those — they substitute a fallback or just log — but as a
// defensive default this still avoids leaking an internal cause chain).
func errorMessage(err error) string {
	se, ok := err.(*Error)
	if !ok {
		return "Something went wrong."
	}
	switch se.Kind {
	case KindAdapter, KindPersistence:
		return "Something went wrong."
	default:
		return se.Message
	}
}
