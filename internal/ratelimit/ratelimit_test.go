package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterFixedWindow(t *testing.T) {
	now := time.Now()
	l := NewLimiter(3, 15*time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("signin:a@example.com"), "attempt %d", i+1)
	}
	assert.False(t, l.Allow("signin:a@example.com"))

	// Independent keys do not share a window.
	assert.True(t, l.Allow("signin:b@example.com"))

	// Just before the window resets.
	now = now.Add(15*time.Minute - time.Second)
	assert.False(t, l.Allow("signin:a@example.com"))

	// After the window expires a fresh one starts.
	now = now.Add(2 * time.Second)
	assert.True(t, l.Allow("signin:a@example.com"))
}

func TestLimiterReset(t *testing.T) {
	l := NewLimiter(1, time.Hour)

	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	l.Reset("k")
	assert.True(t, l.Allow("k"))
}
