package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDialRateLimiter(t *testing.T) {
	rl := NewDialRateLimiter(2, 50*time.Millisecond)

	assert.True(t, rl.Allow("alice"))
	assert.True(t, rl.Allow("alice"))
	assert.False(t, rl.Allow("alice"))

	// A different user has their own window.
	assert.True(t, rl.Allow("bob"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("alice"))
}

func TestDialRateLimiterForget(t *testing.T) {
	rl := NewDialRateLimiter(1, time.Minute)
	assert.True(t, rl.Allow("alice"))
	assert.False(t, rl.Allow("alice"))

	rl.Forget("alice")
	assert.True(t, rl.Allow("alice"))
}

func TestNilLimiterAllowsEverything(t *testing.T) {
	var rl *DialRateLimiter
	assert.True(t, rl.Allow("alice"))
	rl.Forget("alice")
}
