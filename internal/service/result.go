// Package service defines the uniform contract every world-mutation
// service implements (Section 4.D): a single Result return shape and a
// typed Error carrying one of the Section 7 error kinds. Grounded
// on the teacher's agents.ApplyAction family, which likewise funnels every
// mutation through a narrow, uniformly-shaped return rather than bespoke
// per-action signatures.
package service

import "fmt"

// Emit is one line of text destined for the acting session only.
type Emit struct {
	Text string
}

// Broadcast is one line of text destined for every other session in Room,
// excluding the actor (Section 4.D).
type Broadcast struct {
	RoomID  string
	Text    string
	Exclude string // session-id of the actor, never re-delivered their own broadcast
}

// Result is the 4-tuple every world-mutation service returns (Section 4.D):
// whether this service claimed the command, an error (nil on success), the
// lines to emit to the actor, and the lines to broadcast to the room.
type Result struct {
	Handled    bool
	Err        error
	Emits      []Emit
	Broadcasts []Broadcast
}

// Ok builds a successful, handled Result.
func Ok(emits []Emit, broadcasts []Broadcast) Result {
	return Result{Handled: true, Emits: emits, Broadcasts: broadcasts}
}

// Fail builds a handled Result carrying an error. The command was
// recognized by this service but could not complete.
func Fail(err error) Result {
	return Result{Handled: true, Err: err}
}

// Unhandled reports that this service does not recognize the command, so
// the dispatcher should try the next one (Section 4.D).
func Unhandled() Result {
	return Result{Handled: false}
}

// Kind is one of the Section 7 error taxonomy members.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindPermission Kind = "permission"
	KindConstraint Kind = "constraint"
	KindRateLimit  Kind = "rate_limit"
	KindAdapter    Kind = "adapter"
	KindIntegrity  Kind = "integrity"
	KindPersistence Kind = "persistence"
)

// Error is the typed error every service and lower layer returns, carrying
// enough structure for the session layer to pick a player-facing message
// and a log level without string-matching (Section 7).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a Error of the given kind around a lower-level cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Retryable reports whether the session layer should treat this error as
// transient (Section 7: rate-limit and adapter errors are retryable by the
// player simply trying again; the rest are not).
func Retryable(err error) bool {
	se, ok := err.(*Error)
	if !ok {
		return false
	}
	return se.Kind == KindRateLimit || se.Kind == KindAdapter
}
