package authapi

import (
	"errors"

	"github.com/tendant/clinic-idm/pkg/account"
	"github.com/tendant/clinic-idm/pkg/client"
	"github.com/tendant/clinic-idm/pkg/emailverification"
	idmerrors "github.com/tendant/clinic-idm/pkg/errors"
	"github.com/tendant/clinic-idm/pkg/login"
	"github.com/tendant/clinic-idm/pkg/signup"
)

// mapError turns service errors into client errors. Anything unrecognised is
// reported as an internal error.
func mapError(err error) error {
	switch {
	// registration
	case errors.Is(err, signup.ErrEmailAlreadyRegistered):
		return idmerrors.Wrap(err, idmerrors.ErrCodeUserAlreadyExists, "email is already registered")
	case errors.Is(err, signup.ErrNoOrganizationAvailable):
		return idmerrors.Wrap(err, idmerrors.ErrCodeNoOrganizationToJoin, "no organization is available to join")
	case errors.Is(err, signup.ErrOrganizationNotFound):
		return idmerrors.Wrap(err, idmerrors.ErrCodeNotFound, "organization not found")
	case errors.Is(err, signup.ErrOrganizationSuspended):
		return idmerrors.Wrap(err, idmerrors.ErrCodeTenantSuspended, "organization is suspended")
	case errors.Is(err, signup.ErrRegistrationDisabled):
		return idmerrors.Wrap(err, idmerrors.ErrCodeForbidden, "registration is disabled")
	case errors.Is(err, signup.ErrEmailAndPasswordRequired),
		errors.Is(err, signup.ErrPasswordTooShort),
		errors.Is(err, signup.ErrPasswordTooLong),
		errors.Is(err, signup.ErrInvalidRole),
		errors.Is(err, signup.ErrInvalidOrganizationType),
		errors.Is(err, signup.ErrAdminFullNameRequired):
		return idmerrors.Wrap(err, idmerrors.ErrCodeInvalidInput, err.Error())

	// login and refresh
	case errors.Is(err, login.ErrInvalidCredentials):
		return idmerrors.Wrap(err, idmerrors.ErrCodeInvalidCredentials, "invalid email or password")
	case errors.Is(err, login.ErrTokenExpired):
		return idmerrors.Wrap(err, idmerrors.ErrCodeTokenExpired, "refresh token has expired")
	case errors.Is(err, login.ErrInvalidToken):
		return idmerrors.Wrap(err, idmerrors.ErrCodeTokenInvalid, "invalid refresh token")
	case errors.Is(err, account.ErrEmailNotVerified),
		errors.Is(err, account.ErrUserDisabled),
		errors.Is(err, account.ErrTenantSuspended),
		errors.Is(err, account.ErrOrganizationNotFound):
		return client.StandingError(err)

	// email verification
	case errors.Is(err, emailverification.ErrInvalidCode):
		return idmerrors.Wrap(err, idmerrors.ErrCodeInvalidOtp, "invalid or expired OTP")
	case errors.Is(err, emailverification.ErrUserNotFound):
		return idmerrors.Wrap(err, idmerrors.ErrCodeNotFound, "user not found")
	case errors.Is(err, emailverification.ErrEmailAlreadyVerified):
		return idmerrors.Wrap(err, idmerrors.ErrCodeEmailAlreadyVerified, "email is already verified")
	case errors.Is(err, emailverification.ErrRateLimitExceeded),
		errors.Is(err, emailverification.ErrTooManyAttempts):
		return idmerrors.RateLimitExceeded("")
	}
	return idmerrors.InternalWrap(err)
}
