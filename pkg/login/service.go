package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tendant/clinic-idm/pkg/account"
	"github.com/tendant/clinic-idm/pkg/tokengenerator"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
)

// LoginService authenticates users and issues their tokens
type LoginService struct {
	repo   account.Repository
	tokens *tokengenerator.TokenService
	hasher PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// LoginServiceOption configures a LoginService
type LoginServiceOption func(*LoginService)

// WithPasswordHasher replaces the default bcrypt hasher
func WithPasswordHasher(hasher PasswordHasher) LoginServiceOption {
	return func(s *LoginService) {
		s.hasher = hasher
	}
}

func NewLoginService(repo account.Repository, tokens *tokengenerator.TokenService, opts ...LoginServiceOption) *LoginService {
	s := &LoginService{
		repo:   repo,
		tokens: tokens,
		hasher: NewBcryptHasher(MinBcryptCost),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type LoginResult struct {
	User             account.User
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type RefreshResult struct {
	AccessToken     string
	AccessExpiresAt time.Time
}

func (s *LoginService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, account.NormalizeEmail(email))
	if errors.Is(err, account.ErrUserNotFound) {
		s.burnPasswordCheck(password)
		slog.Info("Login failed", "reason", "unknown email")
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.EmailVerified {
		slog.Info("Login refused", "user", user, "reason", "email not verified")
		return LoginResult{}, account.ErrEmailNotVerified
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		slog.Warn("Password verification error", "user", user, "error", err)
		return LoginResult{}, ErrInvalidCredentials
	}
	if !ok {
		slog.Info("Login failed", "user", user, "reason", "password mismatch")
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := account.CheckStanding(ctx, s.repo, user); err != nil {
		slog.Info("Login refused", "user", user, "reason", err)
		return LoginResult{}, err
	}

	claims := sessionClaims(user)
	access, accessExp, err := s.tokens.IssueAccessToken(claims)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, refreshExp, err := s.tokens.IssueRefreshToken(claims)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	slog.Info("Login succeeded", "user", user)
	return LoginResult{
		User:             user,
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The user's
// standing is checked again; the refresh token itself is not rotated.
func (s *LoginService) Refresh(ctx context.Context, refreshToken string) (RefreshResult, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if errors.Is(err, tokengenerator.ErrTokenExpired) {
		return RefreshResult{}, ErrTokenExpired
	}
	if err != nil {
		return RefreshResult{}, ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, account.ErrUserNotFound) {
		return RefreshResult{}, ErrInvalidToken
	}
	if err != nil {
		return RefreshResult{}, fmt.Errorf("failed to load user: %w", err)
	}
	if err := account.CheckStanding(ctx, s.repo, user); err != nil {
		return RefreshResult{}, err
	}

	access, accessExp, err := s.tokens.IssueAccessToken(sessionClaims(user))
	if err != nil {
		return RefreshResult{}, fmt.Errorf("failed to issue access token: %w", err)
	}
	return RefreshResult{AccessToken: access, AccessExpiresAt: accessExp}, nil
}

// burnPasswordCheck spends about as long as a real comparison so that
// unknown emails cannot be told apart by response time.
func (s *LoginService) burnPasswordCheck(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("clinic-idm-dummy-password")
		if err != nil {
			slog.Error("Failed to prepare dummy password hash", "error", err)
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" && password != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

func sessionClaims(user account.User) tokengenerator.SessionClaims {
	return tokengenerator.SessionClaims{
		UserID:   user.ID,
		Role:     string(user.Role),
		TenantID: user.TenantID,
	}
}
