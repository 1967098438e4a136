// Package ratelimit implements the soft per-key cooldown used to debounce
// rapid participant actions. State is per-process and lost on restart, which
// only loosens debounce strictness, never correctness.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Limiter answers whether an action keyed by an opaque string may proceed
// now. A false result means "retry shortly", not a hard failure.
type Limiter interface {
	Allow(key string) bool
}

// Key builds the debounce key for a participant acting on a question. The
// action name keeps independent cooldowns (voting, adding a custom answer)
// from blocking each other when one limiter instance is shared.
func Key(action string, participantID, questionID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", action, participantID, questionID)
}

// CooldownLimiter allows each key at most once per rolling window.
type CooldownLimiter struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	window   time.Duration
	clock    clockwork.Clock

	// Entries are swept lazily once the map grows past sweepThreshold to
	// keep memory bounded without a background goroutine.
	sweepThreshold int
}

// NewCooldownLimiter creates a limiter with the given rolling window.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
func NewCooldownLimiter(window time.Duration, clock clockwork.Clock) *CooldownLimiter {
	return &CooldownLimiter{
		lastSeen:       make(map[string]time.Time),
		window:         window,
		clock:          clock,
		sweepThreshold: 4096,
	}
}

// Allow reports whether the key's window has elapsed, recording the attempt
// when it has. Calls inside the window do not extend it.
func (l *CooldownLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if last, ok := l.lastSeen[key]; ok && now.Sub(last) < l.window {
		return false
	}
	l.lastSeen[key] = now

	if len(l.lastSeen) > l.sweepThreshold {
		l.sweep(now)
	}
	return true
}

func (l *CooldownLimiter) sweep(now time.Time) {
	for k, seen := range l.lastSeen {
		if now.Sub(seen) >= l.window {
			delete(l.lastSeen, k)
		}
	}
}
