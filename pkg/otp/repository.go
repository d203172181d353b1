package otp

import (
	"context"
	"time"
)

// Repository is the OTP ledger.
type Repository interface {
	// Replace deletes every record for rec.Email and stores rec.
	Replace(ctx context.Context, rec Record) error
	// FindActive returns the record for email with codeHash that expires after now.
	FindActive(ctx context.Context, email, codeHash string, now time.Time) (Record, error)
	// DeleteAll removes every record for email.
	DeleteAll(ctx context.Context, email string) error
}
