package config

import "time"

type OtpConfig struct {
	// Store is one of postgres, memory or redis.
	Store        string `env:"OTP_STORE" env-default:"postgres"`
	TTL          string `env:"OTP_TTL" env-default:"PT10M"`
	ResendLimit  int    `env:"OTP_RESEND_LIMIT" env-default:"3"`
	ResendWindow string `env:"OTP_RESEND_WINDOW" env-default:"15m"`

	// VerifyAttempts is how many codes one email may try per code lifetime.
	VerifyAttempts int `env:"OTP_VERIFY_ATTEMPTS" env-default:"5"`
}

func (o OtpConfig) CodeTTL() time.Duration {
	return mustDuration(o.TTL, 10*time.Minute)
}

func (o OtpConfig) ResendWindowDuration() time.Duration {
	return mustDuration(o.ResendWindow, 15*time.Minute)
}
