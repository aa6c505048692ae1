package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AG-1laksh/JanPath-sub001/internal/config"
	"github.com/AG-1laksh/JanPath-sub001/internal/middleware"
	"github.com/AG-1laksh/JanPath-sub001/internal/models"
	"github.com/AG-1laksh/JanPath-sub001/internal/utils"
)

type userStore map[string]*models.User

func (s userStore) Create(_ context.Context, u *models.User, _ string) (*models.User, error) {
	return u, nil
}

func (s userStore) GetByEmail(context.Context, string) (*models.User, string, error) {
	return nil, "", nil
}

func (s userStore) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s userStore) List(context.Context, string, string, int, int) ([]models.User, int, error) {
	return nil, 0, nil
}

func (s userStore) UpdateRole(_ context.Context, id, role string) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, nil
	}
	u.Role = role
	return u, nil
}

const testSecret = "auth-test-secret"

// authChain mirrors the router: WithAuth resolving identity, RequireAuth
// gating, and a handler echoing the resolved role.
func authChain(users userStore) http.Handler {
	cfg := config.Config{SessionSecret: testSecret}
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := utils.GetString(r.Context(), middleware.CtxRole)
		utils.JSON(w, http.StatusOK, map[string]string{"role": role})
	})
	return middleware.WithAuth(zerolog.Nop(), cfg, users)(middleware.RequireAuth(echo))
}

func doAuthed(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthRoleComesFromStore(t *testing.T) {
	users := userStore{"u-1": {ID: "u-1", Role: models.RoleUser}}
	h := authChain(users)

	tok, err := utils.SignJWT(testSecret, "u-1", models.RoleUser, time.Hour)
	require.NoError(t, err)

	rec := doAuthed(t, h, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), models.RoleUser)

	// Promotion applies on the very next request; the stale claim loses.
	_, err = users.UpdateRole(context.Background(), "u-1", models.RoleWorker)
	require.NoError(t, err)
	rec = doAuthed(t, h, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), models.RoleWorker)
}

func TestAuthDeletedUserIsUnauthenticated(t *testing.T) {
	users := userStore{}
	h := authChain(users)

	// Valid token for a user with no row behind it.
	tok, err := utils.SignJWT(testSecret, "u-gone", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	rec := doAuthed(t, h, tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	h := authChain(userStore{"u-1": {ID: "u-1", Role: models.RoleUser}})

	rec := doAuthed(t, h, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := utils.SignJWT("some-other-secret", "u-1", models.RoleUser, time.Hour)
	require.NoError(t, err)
	rec = doAuthed(t, h, other)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
