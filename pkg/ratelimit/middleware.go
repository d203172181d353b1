package ratelimit

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tendant/clinic-idm/pkg/errors"
)

// Config holds rate limiting configuration
type Config struct {
	Enabled bool

	// Every request is counted against its client IP.
	GlobalPerIP int

	// Credential and OTP endpoints get a stricter per-IP budget.
	AuthPerIP int

	// Window over which each budget refills.
	Window time.Duration

	// Bucket TTL (how long to keep inactive buckets in memory)
	BucketTTL time.Duration

	IncludeHeaders bool

	// TrustProxyHeaders keys requests on X-Forwarded-For / X-Real-IP. Enable
	// only behind a proxy that overwrites them; otherwise clients pick their own key.
	TrustProxyHeaders bool
}

// DefaultConfig returns the limits used when nothing is configured
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		GlobalPerIP:    300,
		AuthPerIP:      20,
		Window:         15 * time.Minute,
		BucketTTL:      1 * time.Hour,
		IncludeHeaders: true,
	}
}

// Middleware holds the rate limiting middleware state
type Middleware struct {
	config      *Config
	ipLimiter   *RateLimiter
	authLimiter *RateLimiter
}

// NewMiddleware creates a new rate limiting middleware
func NewMiddleware(config *Config, opts ...Option) *Middleware {
	if config == nil {
		config = DefaultConfig()
	}

	m := &Middleware{config: config}
	if config.Enabled {
		m.ipLimiter = NewRateLimiter(config.GlobalPerIP, PerWindow(config.GlobalPerIP, config.Window), config.BucketTTL, opts...)
		m.authLimiter = NewRateLimiter(config.AuthPerIP, PerWindow(config.AuthPerIP, config.Window), config.BucketTTL, opts...)
	}
	return m
}

// Handler applies the general per-IP budget.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return m.limit(m.ipLimiter, "ip", m.config.GlobalPerIP, next)
}

// AuthHandler applies the stricter budget for credential and OTP endpoints.
func (m *Middleware) AuthHandler(next http.Handler) http.Handler {
	return m.limit(m.authLimiter, "auth", m.config.AuthPerIP, next)
}

func (m *Middleware) limit(limiter *RateLimiter, tier string, capacity int, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getClientIP(r, m.config.TrustProxyHeaders)
		if !limiter.Allow(ip) {
			m.rateLimitExceeded(w, r, tier, limiter.RetryAfter(ip))
			return
		}
		if m.config.IncludeHeaders {
			w.Header().Set("X-RateLimit-Limit-"+strings.ToUpper(tier[:1])+tier[1:], strconv.Itoa(capacity))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) rateLimitExceeded(w http.ResponseWriter, r *http.Request, tier string, retryAfter time.Duration) {
	slog.Warn("Rate limit exceeded",
		"type", tier,
		"ip", getClientIP(r, m.config.TrustProxyHeaders),
		"path", r.URL.Path,
		"method", r.Method,
	)

	seconds := strconv.Itoa(int(math.Ceil(retryAfter.Seconds())))
	w.Header().Set("Retry-After", seconds)
	errors.Render(w, r, errors.RateLimitExceeded(seconds+"s").WithDetail("type", tier))
}

// getClientIP extracts the client IP address from the request. Proxy headers
// are only consulted when trustProxy is set.
func getClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		// X-Forwarded-For can contain multiple IPs, take the first one
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			ips := strings.Split(xff, ",")
			return strings.TrimSpace(ips[0])
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// GetStats returns statistics about both tiers
func (m *Middleware) GetStats() map[string]Stats {
	stats := make(map[string]Stats)
	if m.ipLimiter != nil {
		stats["ip"] = m.ipLimiter.GetStats()
	}
	if m.authLimiter != nil {
		stats["auth"] = m.authLimiter.GetStats()
	}
	return stats
}

// Reset clears both tiers for an IP
func (m *Middleware) Reset(ip string) {
	if m.ipLimiter != nil {
		m.ipLimiter.Reset(ip)
	}
	if m.authLimiter != nil {
		m.authLimiter.Reset(ip)
	}
}

// Close stops the background cleanup of both tiers.
func (m *Middleware) Close() {
	if m.ipLimiter != nil {
		m.ipLimiter.Close()
	}
	if m.authLimiter != nil {
		m.authLimiter.Close()
	}
}
