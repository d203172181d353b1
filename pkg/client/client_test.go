package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/clinic-idm/pkg/account"
	idmerrors "github.com/tendant/clinic-idm/pkg/errors"
	"github.com/tendant/clinic-idm/pkg/tokengenerator"
)

const (
	accessSecret = "test-access-secret"
	issuer       = "clinic-idm-test"
)

type testEnv struct {
	repo    *account.InMemoryRepository
	tokens  *tokengenerator.TokenService
	handler http.Handler
}

func newTestEnv(t *testing.T, roles ...account.Role) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:   account.NewInMemoryRepository(),
		tokens: tokengenerator.NewTokenService(accessSecret, "test-refresh-secret", issuer, issuer),
	}

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authUser, ok := GetAuthUser(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User", authUser.User.ID.String())
		w.WriteHeader(http.StatusOK)
	})
	if len(roles) > 0 {
		h = RestrictTo(roles...)(h)
	}
	env.handler = AuthMiddleware(env.tokens, env.repo)(h)
	return env
}

func (env *testEnv) createUser(t *testing.T, email string, role account.Role, verified bool) account.User {
	t.Helper()
	ctx := context.Background()
	var user account.User
	require.NoError(t, env.repo.WithTx(ctx, func(tx account.TxRepository) error {
		org, err := tx.CreateOrganization(ctx, account.CreateOrganizationParams{AdminFullName: "Dr A"})
		if err != nil {
			return err
		}
		user, err = tx.CreateUser(ctx, account.CreateUserParams{
			Email:        email,
			PasswordHash: "hash",
			Role:         role,
			TenantID:     org.ID,
		})
		return err
	}))
	if verified {
		var err error
		user, err = env.repo.MarkEmailVerified(ctx, email)
		require.NoError(t, err)
	}
	return user
}

func (env *testEnv) accessToken(t *testing.T, user account.User) string {
	t.Helper()
	token, _, err := env.tokens.IssueAccessToken(tokengenerator.SessionClaims{
		UserID:   user.ID,
		Role:     string(user.Role),
		TenantID: user.TenantID,
	})
	require.NoError(t, err)
	return token
}

func (env *testEnv) do(authorization string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) idmerrors.ErrorCode {
	t.Helper()
	var body idmerrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.createUser(t, "a@x.com", account.RoleOwner, true)

		w := env.do("Bearer " + env.accessToken(t, user))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, user.ID.String(), w.Header().Get("X-User"))
	})

	t.Run("missing header", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do("")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, idmerrors.ErrCodeUnauthorized, errorCode(t, w))
	})

	t.Run("not a bearer header", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.createUser(t, "a@x.com", account.RoleOwner, true)
		w := env.do("Basic " + env.accessToken(t, user))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.createUser(t, "a@x.com", account.RoleOwner, true)

		g := tokengenerator.NewJwtTokenGenerator(accessSecret, issuer, issuer, tokengenerator.ACCESS_TOKEN_NAME)
		expired, _, err := g.GenerateToken(tokengenerator.SessionClaims{UserID: user.ID, Role: "OWNER", TenantID: user.TenantID}, -time.Minute)
		require.NoError(t, err)

		w := env.do("Bearer " + expired)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, idmerrors.ErrCodeTokenExpired, errorCode(t, w))
	})

	t.Run("token signed with another key", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.createUser(t, "a@x.com", account.RoleOwner, true)

		forged := jwtauth.New("HS256", []byte("not-the-secret"), nil)
		_, token, err := forged.Encode(map[string]interface{}{
			"sub":        user.ID.String(),
			"role":       "OWNER",
			"tenant_id":  user.TenantID.String(),
			"token_type": tokengenerator.ACCESS_TOKEN_NAME,
			"iss":        issuer,
			"aud":        issuer,
			"exp":        time.Now().Add(time.Hour).Unix(),
		})
		require.NoError(t, err)

		w := env.do("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, idmerrors.ErrCodeTokenInvalid, errorCode(t, w))
	})

	t.Run("refresh token is not accepted", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.createUser(t, "a@x.com", account.RoleOwner, true)
		refresh, _, err := env.tokens.IssueRefreshToken(tokengenerator.SessionClaims{UserID: user.ID, Role: "OWNER", TenantID: user.TenantID})
		require.NoError(t, err)

		w := env.do("Bearer " + refresh)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("user no longer exists", func(t *testing.T) {
		env := newTestEnv(t)
		other := newTestEnv(t)
		ghost := other.createUser(t, "ghost@x.com", account.RoleOwner, true)

		w := env.do("Bearer " + env.accessToken(t, ghost))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unverified user", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.createUser(t, "a@x.com", account.RoleOwner, false)

		w := env.do("Bearer " + env.accessToken(t, user))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, idmerrors.ErrCodeEmailNotVerified, errorCode(t, w))
	})

	t.Run("inactive user", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.createUser(t, "a@x.com", account.RoleOwner, true)
		token := env.accessToken(t, user)
		require.NoError(t, env.repo.SetUserActive(context.Background(), user.ID, false))

		w := env.do("Bearer " + token)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, idmerrors.ErrCodeUserDisabled, errorCode(t, w))
	})

	t.Run("suspended tenant", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.createUser(t, "a@x.com", account.RoleOwner, true)
		require.NoError(t, env.repo.SetOrganizationStatus(context.Background(), user.TenantID, account.OrganizationSuspended))

		w := env.do("Bearer " + env.accessToken(t, user))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, idmerrors.ErrCodeTenantSuspended, errorCode(t, w))
	})
}

func TestRestrictTo(t *testing.T) {
	env := newTestEnv(t, account.RoleOwner)
	owner := env.createUser(t, "owner@x.com", account.RoleOwner, true)
	doctor := env.createUser(t, "doctor@x.com", account.RoleDoctor, true)

	assert.Equal(t, http.StatusOK, env.do("Bearer "+env.accessToken(t, owner)).Code)

	w := env.do("Bearer " + env.accessToken(t, doctor))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, idmerrors.ErrCodeInsufficientRole, errorCode(t, w))
}

func TestRestrictTo_WithoutAuthentication(t *testing.T) {
	h := RestrictTo(account.RoleOwner)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetAuthUser(t *testing.T) {
	_, ok := GetAuthUser(context.Background())
	assert.False(t, ok)

	ctx := WithAuthUser(context.Background(), &AuthUser{Role: account.RoleDoctor})
	user, ok := GetAuthUser(ctx)
	require.True(t, ok)
	assert.True(t, user.HasRole(account.RoleOwner, account.RoleDoctor))
	assert.False(t, user.HasRole(account.RoleOwner))
}
