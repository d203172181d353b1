package client

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tendant/clinic-idm/pkg/account"
)

// AuthUser is the authenticated principal attached to a request.
type AuthUser struct {
	User     account.User
	TenantID uuid.UUID
	Role     account.Role
	TokenID  string
}

func (i AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", i.User.ID.String()),
		slog.String("role", string(i.Role)),
		slog.String("tenant_id", i.TenantID.String()),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "clinic-idm context value " + k.name
}

var (
	AuthUserKey = &contextKey{"AuthUser"}
)

// WithAuthUser returns a copy of ctx carrying user.
func WithAuthUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, AuthUserKey, user)
}

// GetAuthUser returns the principal set by AuthMiddleware, if any.
func GetAuthUser(ctx context.Context) (*AuthUser, bool) {
	user, ok := ctx.Value(AuthUserKey).(*AuthUser)
	return user, ok && user != nil
}

// HasRole reports whether the user holds one of roles.
func (i *AuthUser) HasRole(roles ...account.Role) bool {
	if i == nil {
		return false
	}
	for _, role := range roles {
		if i.Role == role {
			return true
		}
	}
	return false
}
