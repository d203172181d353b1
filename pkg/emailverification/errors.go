package emailverification

import "errors"

var (
	// ErrInvalidCode is returned for a wrong, expired or already used code.
	ErrInvalidCode = errors.New("invalid or expired OTP")

	// ErrUserNotFound is returned when the code matched but no account exists
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyVerified is returned when resending to a verified account
	ErrEmailAlreadyVerified = errors.New("email already verified")

	// ErrRateLimitExceeded is returned when too many codes were requested for one email
	ErrRateLimitExceeded = errors.New("too many verification codes requested, please try again later")

	// ErrTooManyAttempts is returned when too many codes were tried for one email
	ErrTooManyAttempts = errors.New("too many verification attempts, please try again later")
)
