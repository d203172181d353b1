package emailverification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tendant/clinic-idm/pkg/account"
	"github.com/tendant/clinic-idm/pkg/otp"
	"github.com/tendant/clinic-idm/pkg/ratelimit"
)

// EmailVerificationService handles email verification operations
type EmailVerificationService struct {
	repo         account.Repository
	otp          *otp.OtpService
	resendLimit  int
	resendWindow time.Duration
	now          func() time.Time
	limiter      *ratelimit.RateLimiter

	verifyLimit    int
	verifyWindow   time.Duration
	verifyAttempts *ratelimit.RateLimiter
}

// EmailVerificationServiceOption defines configuration options
type EmailVerificationServiceOption func(*EmailVerificationService)

// WithResendLimit sets the maximum number of codes that can be requested within the resend window
func WithResendLimit(limit int) EmailVerificationServiceOption {
	return func(s *EmailVerificationService) {
		if limit > 0 {
			s.resendLimit = limit
		}
	}
}

// WithResendWindow sets the time window for rate limiting
func WithResendWindow(window time.Duration) EmailVerificationServiceOption {
	return func(s *EmailVerificationService) {
		if window > 0 {
			s.resendWindow = window
		}
	}
}

// WithVerifyAttemptLimit sets how many codes may be tried for one email within
// the verify window. A wrong guess does not consume the live code, so this is
// what bounds guessing.
func WithVerifyAttemptLimit(limit int) EmailVerificationServiceOption {
	return func(s *EmailVerificationService) {
		if limit > 0 {
			s.verifyLimit = limit
		}
	}
}

func WithVerifyAttemptWindow(window time.Duration) EmailVerificationServiceOption {
	return func(s *EmailVerificationService) {
		if window > 0 {
			s.verifyWindow = window
		}
	}
}

// WithClock replaces the time source of the resend limiter
func WithClock(now func() time.Time) EmailVerificationServiceOption {
	return func(s *EmailVerificationService) {
		s.now = now
	}
}

// NewEmailVerificationService creates a new email verification service
func NewEmailVerificationService(repo account.Repository, otpService *otp.OtpService, opts ...EmailVerificationServiceOption) *EmailVerificationService {
	s := &EmailVerificationService{
		repo:         repo,
		otp:          otpService,
		resendLimit:  3,
		resendWindow: 15 * time.Minute,
		verifyLimit:  5,
		verifyWindow: otp.DefaultTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.limiter = ratelimit.NewRateLimiter(
		s.resendLimit,
		ratelimit.PerWindow(s.resendLimit, s.resendWindow),
		s.resendWindow,
		ratelimit.WithClock(s.now),
	)
	s.verifyAttempts = ratelimit.NewRateLimiter(
		s.verifyLimit,
		ratelimit.PerWindow(s.verifyLimit, s.verifyWindow),
		s.verifyWindow,
		ratelimit.WithClock(s.now),
	)
	return s
}

// VerifyEmail consumes code for email and marks the account verified.
func (s *EmailVerificationService) VerifyEmail(ctx context.Context, email, code string) error {
	email = account.NormalizeEmail(email)

	if !s.verifyAttempts.Allow(email) {
		slog.Warn("Too many verification attempts", "email", email, "limit", s.verifyLimit, "window", s.verifyWindow)
		return ErrTooManyAttempts
	}

	ok, err := s.otp.Verify(ctx, email, code)
	if err != nil {
		return fmt.Errorf("failed to verify otp: %w", err)
	}
	if !ok {
		slog.Info("OTP verification failed", "email", email)
		return ErrInvalidCode
	}

	user, err := s.repo.MarkEmailVerified(ctx, email)
	if errors.Is(err, account.ErrUserNotFound) {
		slog.Warn("OTP matched but user is missing", "email", email)
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	s.verifyAttempts.Reset(email)
	slog.Info("Email verified successfully", "user", user)
	return nil
}

// ResendCode issues a new code for an unverified account. Unknown addresses
// are reported as success without issuing anything.
func (s *EmailVerificationService) ResendCode(ctx context.Context, email string) error {
	email = account.NormalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, account.ErrUserNotFound) {
		slog.Info("OTP resend requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if user.EmailVerified {
		slog.Info("Email already verified", "user", user)
		return ErrEmailAlreadyVerified
	}

	if !s.limiter.Allow(email) {
		slog.Warn("Rate limit exceeded", "user", user, "limit", s.resendLimit, "window", s.resendWindow)
		return ErrRateLimitExceeded
	}

	if err := s.otp.Issue(ctx, email); err != nil {
		return err
	}
	return nil
}

// ResendRetryAfter reports how long email must wait before another resend is allowed.
func (s *EmailVerificationService) ResendRetryAfter(email string) time.Duration {
	return s.limiter.RetryAfter(account.NormalizeEmail(email))
}

// VerifyRetryAfter reports how long email must wait before another code may be tried.
func (s *EmailVerificationService) VerifyRetryAfter(email string) time.Duration {
	return s.verifyAttempts.RetryAfter(account.NormalizeEmail(email))
}

// Close releases the resend and verify limiters.
func (s *EmailVerificationService) Close() {
	s.limiter.Close()
	s.verifyAttempts.Close()
}
