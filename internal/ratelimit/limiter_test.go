package ratelimit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestCooldownLimiter_AllowsFirstRequest(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiter := NewCooldownLimiter(time.Second, clock)

	assert.True(t, limiter.Allow("a"))
}

func TestCooldownLimiter_BlocksInsideWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiter := NewCooldownLimiter(time.Second, clock)

	assert.True(t, limiter.Allow("a"))
	clock.Advance(500 * time.Millisecond)
	assert.False(t, limiter.Allow("a"))
}

func TestCooldownLimiter_BlockedRequestDoesNotExtendWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiter := NewCooldownLimiter(time.Second, clock)

	assert.True(t, limiter.Allow("a"))
	clock.Advance(900 * time.Millisecond)
	assert.False(t, limiter.Allow("a"))
	clock.Advance(200 * time.Millisecond)
	// 1.1s after the allowed request: the rejected attempt at 0.9s must not
	// have restarted the cooldown.
	assert.True(t, limiter.Allow("a"))
}

func TestCooldownLimiter_AllowsAfterWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiter := NewCooldownLimiter(time.Second, clock)

	assert.True(t, limiter.Allow("a"))
	clock.Advance(time.Second + time.Millisecond)
	assert.True(t, limiter.Allow("a"))
}

func TestCooldownLimiter_KeysAreIndependent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiter := NewCooldownLimiter(time.Second, clock)

	assert.True(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))
	assert.False(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("b"))
}

func TestKey(t *testing.T) {
	p := uuid.New()
	q := uuid.New()
	assert.Equal(t, "vote:"+p.String()+":"+q.String(), Key("vote", p, q))
	assert.NotEqual(t, Key("vote", p, q), Key("vote", q, p))
	assert.NotEqual(t, Key("vote", p, q), Key("custom-answer", p, q))
}

func TestCooldownLimiter_ActionsCooldownIndependently(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiter := NewCooldownLimiter(time.Second, clock)
	p := uuid.New()
	q := uuid.New()

	assert.True(t, limiter.Allow(Key("vote", p, q)))
	clock.Advance(500 * time.Millisecond)
	// A recent vote preview must not block the participant's first custom
	// answer for the same question.
	assert.True(t, limiter.Allow(Key("custom-answer", p, q)))
	assert.False(t, limiter.Allow(Key("vote", p, q)))
}
