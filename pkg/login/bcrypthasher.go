package login

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the lowest work factor NewBcryptHasher accepts.
const MinBcryptCost = 12

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher with at least MinBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash implements PasswordHasher.Hash
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify implements PasswordHasher.Verify
func (h *BcryptHasher) Verify(password, hashedPassword string) (bool, error) {
	if password == "" || hashedPassword == "" {
		return false, errors.New("password and hashed password cannot be empty")
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil // Password doesn't match, but not an error
		}
		return false, err
	}
	return true, nil
}
