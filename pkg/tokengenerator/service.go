package tokengenerator

import (
	"time"
)

const (
	ACCESS_TOKEN_NAME  = "access"
	REFRESH_TOKEN_NAME = "refresh"
)

const (
	DefaultAccessTokenExpiry  = 15 * time.Minute
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

// TokenService pairs the access and refresh generators.
type TokenService struct {
	access             TokenGenerator
	refresh            TokenGenerator
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// Option configures a TokenService
type Option func(*TokenService)

// WithAccessTokenExpiry sets the access token lifetime
func WithAccessTokenExpiry(expiry time.Duration) Option {
	return func(s *TokenService) {
		if expiry > 0 {
			s.accessTokenExpiry = expiry
		}
	}
}

// WithRefreshTokenExpiry sets the refresh token lifetime
func WithRefreshTokenExpiry(expiry time.Duration) Option {
	return func(s *TokenService) {
		if expiry > 0 {
			s.refreshTokenExpiry = expiry
		}
	}
}

// NewTokenService builds the two generators from their secrets.
func NewTokenService(accessSecret, refreshSecret, issuer, audience string, opts ...Option) *TokenService {
	return NewTokenServiceWithGenerators(
		NewJwtTokenGenerator(accessSecret, issuer, audience, ACCESS_TOKEN_NAME),
		NewJwtTokenGenerator(refreshSecret, issuer, audience, REFRESH_TOKEN_NAME),
		opts...,
	)
}

func NewTokenServiceWithGenerators(access, refresh TokenGenerator, opts ...Option) *TokenService {
	s := &TokenService{
		access:             access,
		refresh:            refresh,
		accessTokenExpiry:  DefaultAccessTokenExpiry,
		refreshTokenExpiry: DefaultRefreshTokenExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) IssueAccessToken(claims SessionClaims) (string, time.Time, error) {
	return s.access.GenerateToken(claims, s.accessTokenExpiry)
}

func (s *TokenService) IssueRefreshToken(claims SessionClaims) (string, time.Time, error) {
	return s.refresh.GenerateToken(claims, s.refreshTokenExpiry)
}

func (s *TokenService) VerifyAccessToken(token string) (SessionClaims, error) {
	return s.access.ParseToken(token)
}

func (s *TokenService) VerifyRefreshToken(token string) (SessionClaims, error) {
	return s.refresh.ParseToken(token)
}
