// Package client authenticates API callers and carries them through the
// request context.
//
// AuthMiddleware reads the bearer token, verifies it as an access token and
// reloads the user. A token alone is not enough: a deactivated user or a
// suspended organization is rejected even while the token is still valid.
//
// # Basic Usage
//
//	import "github.com/tendant/clinic-idm/pkg/client"
//
//	r.Group(func(r chi.Router) {
//		r.Use(client.AuthMiddleware(tokenService, accountRepo))
//		r.Get("/me", handleMe)
//
//		// Owners only
//		r.With(client.RestrictTo(account.RoleOwner)).Get("/org", handleOrg)
//	})
//
// # Reading the Caller
//
//	func handleMe(w http.ResponseWriter, r *http.Request) {
//		authUser, ok := client.GetAuthUser(r.Context())
//		if !ok {
//			// route is not behind AuthMiddleware
//			return
//		}
//		slog.Info("Serving profile", "user", authUser)
//		// authUser.User, authUser.TenantID, authUser.Role, authUser.TokenID
//	}
//
// HasRole checks the caller inside a handler when a route serves several
// roles:
//
//	if authUser.HasRole(account.RoleOwner) {
//		// include billing fields
//	}
//
// # Standing Errors
//
// StandingError turns account.CheckStanding failures into the API error
// codes EMAIL_NOT_VERIFIED, USER_DISABLED and TENANT_SUSPENDED, so login and
// the middleware answer the same way.
package client
