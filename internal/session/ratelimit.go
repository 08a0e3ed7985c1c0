// Package session implements the Section 4.E command dispatcher: the
// login/auth wizard, the ordered router chain, per-session rate limiting,
// and admin/dead-player gating.
package session

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// operation keys name the three independent buckets Section 4.E calls out:
// "auth attempts, message send, and NPC planning each have independent
// buckets".
const (
	opAuth     = "auth"
	opMessage  = "message"
	opNPCPlan  = "npc_plan"
)

// bucketSpec gives each operation its own rate/burst. The spec names the
// three buckets but leaves their rates unspecified; these are a reasonable
// default, not drawn from any invariant test.
var bucketSpec = map[string]struct {
	rate  rate.Limit
	burst int
}{
	opAuth:    {rate: rate.Every(2 * time.Second), burst: 3},
	opMessage: {rate: rate.Every(200 * time.Millisecond), burst: 10},
	opNPCPlan: {rate: rate.Every(5 * time.Second), burst: 1},
}

// Limiter is a per-session, per-operation token bucket. Grounded on the
// teacher's internal/api/ratelimit.go (map-of-buckets-by-key plus a
// periodic cleanup goroutine), rebuilt on golang.org/x/time/rate.Limiter
// and keyed by (sessionID, operation) instead of by IP.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*limiterEntry
	stopOnce sync.Once
	stop     chan struct{}
}

type limiterEntry struct {
	limiter *rate.Limiter
	lastHit time.Time
}

// NewLimiter starts a Limiter with a background cleanup sweep, mirroring
// the teacher's hourly stale-bucket eviction.
func NewLimiter() *Limiter {
	l := &Limiter{
		buckets: make(map[string]*limiterEntry),
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether sessionID may perform op now, creating its bucket
// on first use.
func (l *Limiter) Allow(sessionID, op string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := sessionID + ":" + op
	e, ok := l.buckets[key]
	if !ok {
		spec := bucketSpec[op]
		e = &limiterEntry{limiter: rate.NewLimiter(spec.rate, spec.burst)}
		l.buckets[key] = e
	}
	e.lastHit = time.Now()
	return e.limiter.Allow()
}

// Forget drops every bucket for sessionID, called on disconnect so a
// reconnecting session starts with a fresh allowance.
func (l *Limiter) Forget(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.buckets {
		if len(key) > len(sessionID) && key[:len(sessionID)] == sessionID && key[len(sessionID)] == ':' {
			delete(l.buckets, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-2 * time.Hour)
	for key, e := range l.buckets {
		if e.lastHit.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
