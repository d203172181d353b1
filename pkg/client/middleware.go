package client

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/tendant/clinic-idm/pkg/account"
	idmerrors "github.com/tendant/clinic-idm/pkg/errors"
	"github.com/tendant/clinic-idm/pkg/tokengenerator"
)

// AccessTokenVerifier checks an access token and returns its claims.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (tokengenerator.SessionClaims, error)
}

// AuthMiddleware authenticates the bearer token of every request and enforces
// the caller's standing. The token alone is not trusted: the user is reloaded
// so that deactivation and suspension take effect immediately.
func AuthMiddleware(tokens AccessTokenVerifier, repo account.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := jwtauth.TokenFromHeader(r)
			if tokenString == "" {
				idmerrors.Render(w, r, idmerrors.Unauthorized("missing bearer token"))
				return
			}

			claims, err := tokens.VerifyAccessToken(tokenString)
			if errors.Is(err, tokengenerator.ErrTokenExpired) {
				idmerrors.Render(w, r, idmerrors.New(idmerrors.ErrCodeTokenExpired, "token has expired"))
				return
			}
			if err != nil {
				slog.Debug("Rejected access token", "error", err)
				idmerrors.Render(w, r, idmerrors.New(idmerrors.ErrCodeTokenInvalid, "invalid token"))
				return
			}

			ctx := r.Context()
			user, err := repo.GetUserByID(ctx, claims.UserID)
			if errors.Is(err, account.ErrUserNotFound) {
				idmerrors.Render(w, r, idmerrors.Unauthorized("user no longer exists"))
				return
			}
			if err != nil {
				idmerrors.Render(w, r, err)
				return
			}

			if err := account.CheckStanding(ctx, repo, user); err != nil {
				slog.Info("Request refused", "user", user, "reason", err)
				idmerrors.Render(w, r, StandingError(err))
				return
			}

			authUser := &AuthUser{
				User:     user,
				TenantID: user.TenantID,
				Role:     user.Role,
				TokenID:  claims.TokenID,
			}
			next.ServeHTTP(w, r.WithContext(WithAuthUser(ctx, authUser)))
		})
	}
}

// RestrictTo allows the request through only for the given roles. It must run
// after AuthMiddleware.
func RestrictTo(roles ...account.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := GetAuthUser(r.Context())
			if !ok {
				idmerrors.Render(w, r, idmerrors.Unauthorized("authentication required"))
				return
			}
			if !authUser.HasRole(roles...) {
				slog.Info("Role not permitted", "auth_user", authUser, "allowed", roles)
				idmerrors.Render(w, r, idmerrors.New(idmerrors.ErrCodeInsufficientRole, "you do not have permission to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// StandingError converts an account standing failure into its client error.
func StandingError(err error) error {
	switch {
	case errors.Is(err, account.ErrEmailNotVerified):
		return idmerrors.Wrap(err, idmerrors.ErrCodeEmailNotVerified, "please verify your email first")
	case errors.Is(err, account.ErrUserDisabled):
		return idmerrors.Wrap(err, idmerrors.ErrCodeUserDisabled, "account is disabled")
	case errors.Is(err, account.ErrTenantSuspended):
		return idmerrors.Wrap(err, idmerrors.ErrCodeTenantSuspended, "organization is suspended")
	case errors.Is(err, account.ErrOrganizationNotFound):
		return idmerrors.Wrap(err, idmerrors.ErrCodeForbidden, "organization is unavailable")
	}
	return idmerrors.InternalWrap(err)
}
