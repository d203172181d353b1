package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"
)

const (
	CodeLength = 6
	DefaultTTL = 10 * time.Minute
)

var codeSpace = big.NewInt(1_000_000)

// Record is one entry of the ledger. The plaintext code is never stored.
type Record struct {
	Email     string    `json:"email"`
	CodeHash  string    `json:"code_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	// ErrNotFound is returned when no unexpired record matches email and code.
	ErrNotFound = errors.New("otp not found")
)

// GenerateCode returns a uniformly random six-digit code, zero padded.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

// HashCode returns the hex SHA-256 digest stored in place of the code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
