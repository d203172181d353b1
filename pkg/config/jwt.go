package config

import "time"

// JwtConfig holds the two independent signing configurations for access and
// refresh tokens.
type JwtConfig struct {
	AccessSecret       string `env:"JWT_ACCESS_SECRET" env-default:"very-secure-access-secret"`
	RefreshSecret      string `env:"JWT_REFRESH_SECRET" env-default:"very-secure-refresh-secret"`
	AccessTokenExpiry  string `env:"ACCESS_TOKEN_EXPIRY" env-default:"15m"`
	RefreshTokenExpiry string `env:"REFRESH_TOKEN_EXPIRY" env-default:"P7D"`
	Issuer             string `env:"JWT_ISSUER" env-default:"clinic-idm"`
	Audience           string `env:"JWT_AUDIENCE" env-default:"clinic-idm"`
}

func (j JwtConfig) AccessTTL() time.Duration {
	return mustDuration(j.AccessTokenExpiry, 15*time.Minute)
}

func (j JwtConfig) RefreshTTL() time.Duration {
	return mustDuration(j.RefreshTokenExpiry, 7*24*time.Hour)
}
