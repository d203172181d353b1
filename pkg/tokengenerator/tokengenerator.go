package tokengenerator

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
)

// SessionClaims is the identity a token asserts.
type SessionClaims struct {
	UserID    uuid.UUID
	Role      string
	TenantID  uuid.UUID
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims is the JWT payload.
type Claims struct {
	Role      string `json:"role"`
	TenantID  string `json:"tenant_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenGenerator signs and parses one class of token.
type TokenGenerator interface {
	GenerateToken(claims SessionClaims, expiry time.Duration) (string, time.Time, error)
	ParseToken(tokenStr string) (SessionClaims, error)
}

// JwtTokenGenerator implements TokenGenerator with HMAC-SHA256.
type JwtTokenGenerator struct {
	Secret    string
	Issuer    string
	Audience  string
	TokenType string
	now       func() time.Time
}

func NewJwtTokenGenerator(secret, issuer, audience, tokenType string) *JwtTokenGenerator {
	return &JwtTokenGenerator{
		Secret:    secret,
		Issuer:    issuer,
		Audience:  audience,
		TokenType: tokenType,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (g *JwtTokenGenerator) GenerateToken(claims SessionClaims, expiry time.Duration) (string, time.Time, error) {
	if claims.UserID == uuid.Nil {
		return "", time.Time{}, errors.New("token subject is required")
	}

	now := g.now()
	payload := Claims{
		Role:      claims.Role,
		TenantID:  claims.TenantID.String(),
		TokenType: g.TokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			Issuer:    g.Issuer,
			Audience:  jwt.ClaimStrings{g.Audience},
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signed, err := token.SignedString([]byte(g.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, payload.ExpiresAt.Time, nil
}

func (g *JwtTokenGenerator) ParseToken(tokenStr string) (SessionClaims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(token *jwt.Token) (interface{}, error) {
			return []byte(g.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(g.Issuer),
		jwt.WithAudience(g.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrTokenExpired
		}
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.TokenType != g.TokenType {
		return SessionClaims{}, fmt.Errorf("%w: unexpected token type %q", ErrTokenInvalid, claims.TokenType)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: bad tenant id", ErrTokenInvalid)
	}

	return SessionClaims{
		UserID:    userID,
		Role:      claims.Role,
		TenantID:  tenantID,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
