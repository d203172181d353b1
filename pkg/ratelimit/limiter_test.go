package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTokenBucket_Allow(t *testing.T) {
	clock := newFakeClock()
	tb := newTokenBucket(5, 1.0, clock.Now)

	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow(), "request %d should be allowed", i+1)
	}
	assert.False(t, tb.Allow(), "6th request should be denied")

	clock.Advance(2 * time.Second)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestTokenBucket_RetryAfter(t *testing.T) {
	clock := newFakeClock()
	tb := newTokenBucket(1, 0.5, clock.Now)

	assert.Zero(t, tb.RetryAfter())
	require.True(t, tb.Allow())
	assert.Equal(t, 2*time.Second, tb.RetryAfter())

	clock.Advance(time.Second)
	assert.Equal(t, time.Second, tb.RetryAfter())
}

func TestTokenBucket_Reset(t *testing.T) {
	tb := NewTokenBucket(3, 0)
	for i := 0; i < 3; i++ {
		tb.Allow()
	}
	assert.False(t, tb.Allow())

	tb.Reset()
	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "request %d should be allowed after reset", i+1)
	}
}

func TestTokenBucket_Tokens(t *testing.T) {
	clock := newFakeClock()
	tb := newTokenBucket(10, 1.0, clock.Now)

	assert.Equal(t, 10.0, tb.Tokens())
	tb.Allow()
	assert.Equal(t, 9.0, tb.Tokens())

	clock.Advance(time.Hour)
	assert.Equal(t, 10.0, tb.Tokens(), "refill is capped at capacity")
}

func TestPerWindow(t *testing.T) {
	assert.InDelta(t, 3.0/900.0, PerWindow(3, 15*time.Minute), 1e-12)
	assert.Zero(t, PerWindow(3, 0))
}

func TestRateLimiter_Allow(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(2, 1.0, 0, WithClock(clock.Now))

	assert.True(t, rl.Allow("key1"))
	assert.True(t, rl.Allow("key1"))
	assert.False(t, rl.Allow("key1"))

	// Separate bucket per key
	assert.True(t, rl.Allow("key2"))
	assert.True(t, rl.Allow("key2"))

	clock.Advance(time.Second)
	assert.True(t, rl.Allow("key1"))
	assert.False(t, rl.Allow("key1"))
}

func TestRateLimiter_Reset(t *testing.T) {
	rl := NewRateLimiter(1, 0, 0)

	rl.Allow("key1")
	assert.False(t, rl.Allow("key1"))

	rl.Reset("key1")
	assert.True(t, rl.Allow("key1"))
}

func TestRateLimiter_Remove(t *testing.T) {
	rl := NewRateLimiter(5, 1.0, 0)

	rl.Allow("key1")
	assert.Equal(t, 1, rl.GetStats().ActiveBuckets)

	rl.Remove("key1")
	assert.Equal(t, 0, rl.GetStats().ActiveBuckets)
}

func TestRateLimiter_Stats(t *testing.T) {
	rl := NewRateLimiter(10, 5.0, 0)
	rl.Allow("key1")
	rl.Allow("key2")
	rl.Allow("key3")

	stats := rl.GetStats()
	assert.Equal(t, 3, stats.ActiveBuckets)
	assert.Equal(t, 10, stats.TotalCapacity)
	assert.Equal(t, 5.0, stats.RefillRate)
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(5, 1.0, time.Minute, WithClock(clock.Now))
	defer rl.Close()

	rl.Allow("old")
	clock.Advance(2 * time.Minute)
	rl.Allow("fresh")

	rl.evictIdle()

	stats := rl.GetStats()
	assert.Equal(t, 1, stats.ActiveBuckets)
	assert.True(t, rl.Allow("fresh"))
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(100, 0, 0)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if rl.Allow("concurrent-test") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed)
	assert.Equal(t, 1, rl.GetStats().ActiveBuckets)
}

func BenchmarkRateLimiter_Allow(b *testing.B) {
	rl := NewRateLimiter(1000000, 1000000.0, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rl.Allow("benchmark-key")
	}
}
