package config

import (
	"fmt"
	"net/url"
)

type DatabaseConfig struct {
	Host     string `env:"IDM_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"IDM_PG_PORT" env-default:"5432"`
	Database string `env:"IDM_PG_DATABASE" env-default:"idm_db"`
	User     string `env:"IDM_PG_USER" env-default:"idm"`
	Password string `env:"IDM_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"IDM_PG_SCHEMA" env-default:"public"`
	SSLMode  string `env:"IDM_PG_SSLMODE" env-default:"disable"`
	MaxConns int32  `env:"IDM_PG_MAX_CONNS" env-default:"10"`
}

// ToDatabaseURL builds a pgx connection string.
func (d DatabaseConfig) ToDatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Database,
		RawQuery: fmt.Sprintf("sslmode=%s&search_path=%s", d.SSLMode, d.Schema),
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
	Prefix   string `env:"REDIS_OTP_PREFIX" env-default:"otp:"`
}
