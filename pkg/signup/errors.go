package signup

import "errors"

var (
	ErrEmailAndPasswordRequired = errors.New("email and password are required")
	ErrPasswordTooShort         = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong          = errors.New("password must be at most 72 bytes")
	ErrInvalidRole              = errors.New("role must be organization or doctor")
	ErrInvalidOrganizationType  = errors.New("organization type must be HOSPITAL, CLINIC or SOLO_PRACTICE")
	ErrAdminFullNameRequired    = errors.New("admin full name is required for organization registration")
	ErrEmailAlreadyRegistered   = errors.New("email is already registered")
	ErrNoOrganizationAvailable  = errors.New("no organization available to join")
	ErrOrganizationNotFound     = errors.New("organization not found")
	ErrOrganizationSuspended    = errors.New("organization is suspended")
	ErrRegistrationDisabled     = errors.New("registration is disabled")
)
