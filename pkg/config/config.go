package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/sosodev/duration"
)

// Persistence backends understood by the repository factories.
const (
	PersistencePostgres = "postgres"
	PersistenceMemory   = "memory"
	PersistenceRedis    = "redis"
)

type AppConfig struct {
	Prefix      string `env:"IDM_API_PREFIX" env-default:"/api/auth"`
	Persistence string `env:"IDM_PERSISTENCE" env-default:"postgres"`
	LogFormat   string `env:"LOG_FORMAT" env-default:"text"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
}

// Config is the complete service configuration.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Jwt       JwtConfig
	Otp       OtpConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
}

// Load reads the optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to load env file", "file", f, "error", err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the service must not start with.
func (c Config) Validate() error {
	switch c.App.Persistence {
	case PersistencePostgres, PersistenceMemory:
	default:
		return fmt.Errorf("unsupported persistence %q", c.App.Persistence)
	}
	switch c.Otp.Store {
	case PersistencePostgres, PersistenceMemory, PersistenceRedis:
	default:
		return fmt.Errorf("unsupported otp store %q", c.Otp.Store)
	}
	if c.Jwt.AccessSecret == "" || c.Jwt.RefreshSecret == "" {
		return errors.New("access and refresh token secrets are required")
	}
	if c.Jwt.AccessSecret == c.Jwt.RefreshSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	for name, v := range map[string]string{
		"ACCESS_TOKEN_EXPIRY":  c.Jwt.AccessTokenExpiry,
		"REFRESH_TOKEN_EXPIRY": c.Jwt.RefreshTokenExpiry,
		"OTP_TTL":              c.Otp.TTL,
		"OTP_RESEND_WINDOW":    c.Otp.ResendWindow,
		"RATELIMIT_WINDOW":     c.RateLimit.Window,
	} {
		d, err := parseDurationISO8601(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (a AppConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseDuration accepts ISO-8601 ("PT10M", "P7D") as well as Go durations ("10m").
func ParseDuration(s string) (time.Duration, error) {
	return parseDurationISO8601(s)
}

func parseDurationISO8601(s string) (time.Duration, error) {
	isoDuration, err := duration.Parse(s)
	if err == nil {
		return isoDuration.ToTimeDuration(), nil
	}
	return time.ParseDuration(s)
}

// mustDuration is used by accessors after Validate has accepted the value.
func mustDuration(s string, fallback time.Duration) time.Duration {
	d, err := parseDurationISO8601(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
