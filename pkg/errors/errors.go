package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the stable, client-visible identifier of a failure kind.
type ErrorCode string

const (
	// Generic
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Authentication
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       ErrorCode = "TOKEN_INVALID"
	ErrCodeInvalidOtp         ErrorCode = "INVALID_OTP"

	// Account standing
	ErrCodeUserAlreadyExists    ErrorCode = "USER_ALREADY_EXISTS"
	ErrCodeUserDisabled         ErrorCode = "USER_DISABLED"
	ErrCodeEmailNotVerified     ErrorCode = "EMAIL_NOT_VERIFIED"
	ErrCodeEmailAlreadyVerified ErrorCode = "EMAIL_ALREADY_VERIFIED"
	ErrCodeTenantSuspended      ErrorCode = "TENANT_SUSPENDED"
	ErrCodeInsufficientRole     ErrorCode = "INSUFFICIENT_ROLE"
	ErrCodeNoOrganizationToJoin ErrorCode = "NO_ORGANIZATION_AVAILABLE"
)

// Error is a structured error carrying a code, a message that is safe to return
// to clients and the underlying cause, which is only ever logged.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails merges details into the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// HTTPStatusCode returns the HTTP status for this error's code
func (e *Error) HTTPStatusCode() int {
	return MapErrorCodeToHTTPStatus(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new Error with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and a client-safe message. Returns nil for a nil err.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// IsCode reports whether err is a structured Error with the given code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
// Returns ErrCodeInternal if the error is not a structured Error.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeValidationFailed, ErrCodeInvalidOtp,
		ErrCodeNoOrganizationToJoin:
		return http.StatusBadRequest

	case ErrCodeUnauthorized, ErrCodeInvalidCredentials, ErrCodeTokenExpired,
		ErrCodeTokenInvalid:
		return http.StatusUnauthorized

	case ErrCodeForbidden, ErrCodeUserDisabled, ErrCodeEmailNotVerified,
		ErrCodeTenantSuspended, ErrCodeInsufficientRole:
		return http.StatusForbidden

	case ErrCodeNotFound:
		return http.StatusNotFound

	case ErrCodeConflict, ErrCodeUserAlreadyExists, ErrCodeEmailAlreadyVerified:
		return http.StatusConflict

	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests

	default:
		return http.StatusInternalServerError
	}
}

// NotFound creates a "not found" error
func NotFound(resourceType string) *Error {
	return Newf(ErrCodeNotFound, "%s not found", resourceType)
}

// InvalidInput creates an "invalid input" error
func InvalidInput(field, reason string) *Error {
	return New(ErrCodeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason))
}

// Unauthorized creates an "unauthorized" error
func Unauthorized(message string) *Error {
	return New(ErrCodeUnauthorized, message)
}

// Forbidden creates a "forbidden" error
func Forbidden(message string) *Error {
	return New(ErrCodeForbidden, message)
}

// InternalWrap wraps an internal error behind a generic message
func InternalWrap(err error) *Error {
	return Wrap(err, ErrCodeInternal, "internal server error")
}

// ValidationFailed creates a "validation failed" error with per-field details
func ValidationFailed(details map[string]interface{}) *Error {
	return New(ErrCodeValidationFailed, "validation failed").WithDetails(details)
}

// RateLimitExceeded creates a "rate limit exceeded" error
func RateLimitExceeded(retryAfter string) *Error {
	err := New(ErrCodeRateLimitExceeded, "too many requests, please try again later")
	if retryAfter != "" {
		err.WithDetail("retry_after", retryAfter)
	}
	return err
}
