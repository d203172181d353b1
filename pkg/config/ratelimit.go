package config

import "time"

// RateLimitConfig mirrors the two limiter tiers: a global per-IP budget for
// every request and a tighter one for the credential endpoints.
type RateLimitConfig struct {
	Enabled     bool   `env:"RATELIMIT_ENABLED" env-default:"true"`
	Window      string `env:"RATELIMIT_WINDOW" env-default:"15m"`
	GlobalPerIP int    `env:"RATELIMIT_GLOBAL_PER_IP" env-default:"300"`
	AuthPerIP   int    `env:"RATELIMIT_AUTH_PER_IP" env-default:"20"`

	// TrustProxyHeaders keys clients on X-Forwarded-For; set only behind a proxy
	// that overwrites the header.
	TrustProxyHeaders bool `env:"RATELIMIT_TRUST_PROXY" env-default:"false"`
}

func (r RateLimitConfig) WindowDuration() time.Duration {
	return mustDuration(r.Window, 15*time.Minute)
}
