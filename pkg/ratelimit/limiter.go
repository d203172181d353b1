package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements the token bucket algorithm for rate limiting
type TokenBucket struct {
	capacity   int       // Maximum number of tokens
	tokens     float64   // Current number of tokens
	refillRate float64   // Tokens added per second
	lastRefill time.Time // Last time tokens were refilled
	now        func() time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
// capacity: Maximum number of requests allowed in a burst
// refillRate: Number of requests allowed per second
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return newTokenBucket(capacity, refillRate, time.Now)
}

func newTokenBucket(capacity int, refillRate float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// Allow checks if a request should be allowed
// Returns true if the request is allowed, false if rate limited
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// RetryAfter reports how long until the next token is available.
func (tb *TokenBucket) RetryAfter() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 || tb.refillRate <= 0 {
		return 0
	}
	missing := 1.0 - tb.tokens
	return time.Duration(missing / tb.refillRate * float64(time.Second))
}

// Tokens returns the current number of available tokens
func (tb *TokenBucket) Tokens() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	return tb.tokens
}

// Reset resets the token bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.tokens = float64(tb.capacity)
	tb.lastRefill = tb.now()
}

// refill must be called with mu held.
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

func (tb *TokenBucket) idleSince() time.Time {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastRefill
}

// PerWindow converts "limit requests per window" into a refill rate.
func PerWindow(limit int, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	return float64(limit) / window.Seconds()
}

// RateLimiter manages one token bucket per key
type RateLimiter struct {
	buckets    map[string]*TokenBucket
	capacity   int
	refillRate float64
	mu         sync.Mutex
	ttl        time.Duration // Time to live for inactive buckets
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// Option configures a RateLimiter
type Option func(*RateLimiter)

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// NewRateLimiter creates a new rate limiter
// capacity: Maximum number of requests allowed in a burst per key
// refillRate: Number of requests allowed per second per key
// ttl: Time to keep inactive buckets in memory (0 = forever)
func NewRateLimiter(capacity int, refillRate float64, ttl time.Duration, opts ...Option) *RateLimiter {
	rl := &RateLimiter{
		buckets:    make(map[string]*TokenBucket),
		capacity:   capacity,
		refillRate: refillRate,
		ttl:        ttl,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}

	if ttl > 0 {
		go rl.cleanup()
	}
	return rl
}

func (rl *RateLimiter) bucket(key string) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = newTokenBucket(rl.capacity, rl.refillRate, rl.now)
		rl.buckets[key] = b
	}
	return b
}

// Allow checks if a request for the given key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	return rl.bucket(key).Allow()
}

// RetryAfter reports how long key must wait before it is allowed again.
func (rl *RateLimiter) RetryAfter(key string) time.Duration {
	return rl.bucket(key).RetryAfter()
}

// Reset resets the rate limiter for a specific key
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if b, ok := rl.buckets[key]; ok {
		b.Reset()
	}
}

// Remove removes a specific key from the rate limiter
func (rl *RateLimiter) Remove(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, key)
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

// evictIdle drops buckets that have not been touched for longer than ttl.
func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.idleSince()) > rl.ttl {
			delete(rl.buckets, key)
		}
	}
}

// Stats returns statistics about the rate limiter
type Stats struct {
	ActiveBuckets int
	TotalCapacity int
	RefillRate    float64
}

// GetStats returns current statistics
func (rl *RateLimiter) GetStats() Stats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return Stats{
		ActiveBuckets: len(rl.buckets),
		TotalCapacity: rl.capacity,
		RefillRate:    rl.refillRate,
	}
}
