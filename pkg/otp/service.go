package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tendant/clinic-idm/pkg/account"
)

// Sender delivers a freshly issued code to its owner.
type Sender interface {
	SendOtp(ctx context.Context, email, code string) error
}

// OtpService issues and verifies one-time passcodes
type OtpService struct {
	repo     Repository
	sender   Sender
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

// OtpServiceOption defines configuration options
type OtpServiceOption func(*OtpService)

// WithTTL sets how long an issued code stays valid
func WithTTL(ttl time.Duration) OtpServiceOption {
	return func(s *OtpService) {
		s.ttl = ttl
	}
}

// WithClock replaces the time source
func WithClock(now func() time.Time) OtpServiceOption {
	return func(s *OtpService) {
		s.now = now
	}
}

// WithCodeGenerator replaces the random code source
func WithCodeGenerator(generate func() (string, error)) OtpServiceOption {
	return func(s *OtpService) {
		s.generate = generate
	}
}

func NewOtpService(repo Repository, sender Sender, opts ...OtpServiceOption) *OtpService {
	s := &OtpService{
		repo:     repo,
		sender:   sender,
		ttl:      DefaultTTL,
		now:      func() time.Time { return time.Now().UTC() },
		generate: GenerateCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue replaces any outstanding code for email with a new one and sends it.
// The record is stored before sending, so a delivery failure is returned but
// the caller may simply issue again.
func (s *OtpService) Issue(ctx context.Context, email string) error {
	email = account.NormalizeEmail(email)

	code, err := s.generate()
	if err != nil {
		return err
	}

	now := s.now()
	rec := Record{
		Email:     email,
		CodeHash:  HashCode(code),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.Replace(ctx, rec); err != nil {
		slog.Error("Failed to store otp", "email", email, "error", err)
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := s.sender.SendOtp(ctx, email, code); err != nil {
		slog.Error("Failed to send otp", "email", email, "error", err)
		return fmt.Errorf("failed to send otp: %w", err)
	}

	slog.Info("OTP issued", "email", email, "expires_at", rec.ExpiresAt)
	return nil
}

// Verify reports whether code is the live code for email. A match consumes
// every record for the email; a mismatch leaves them in place.
func (s *OtpService) Verify(ctx context.Context, email, code string) (bool, error) {
	email = account.NormalizeEmail(email)

	_, err := s.repo.FindActive(ctx, email, HashCode(code), s.now())
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up otp: %w", err)
	}

	if err := s.repo.DeleteAll(ctx, email); err != nil {
		return false, fmt.Errorf("failed to consume otp: %w", err)
	}
	return true, nil
}
