package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tanakrit/postboard-backend/internal/auth"
)

var secret = []byte("gate-secret")

func gatedRequest(t *testing.T, authorization string) (*httptest.ResponseRecorder, *Identity) {
	t.Helper()

	var seen *Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := IdentityFromContext(r.Context()); ok {
			seen = &id
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	RequireAuth(secret)(next).ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	rec, seen := gatedRequest(t, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, seen)
}

func TestRequireAuth_NotBearer(t *testing.T) {
	rec, seen := gatedRequest(t, "Basic dXNlcjpwdw==")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, seen)
}

func TestRequireAuth_MalformedToken(t *testing.T) {
	rec, seen := gatedRequest(t, "Bearer not.a.jwt")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Nil(t, seen)
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	tok, err := auth.IssueToken("u1", "a@x.com", []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	rec, seen := gatedRequest(t, "Bearer "+tok)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Nil(t, seen)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	tok, err := auth.IssueToken("u1", "a@x.com", secret, -time.Minute)
	require.NoError(t, err)

	rec, seen := gatedRequest(t, "Bearer "+tok)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Nil(t, seen)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tok, err := auth.IssueToken("u1", "a@x.com", secret, time.Hour)
	require.NoError(t, err)

	rec, seen := gatedRequest(t, "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	require.Equal(t, "u1", seen.UserID)
	require.Equal(t, "a@x.com", seen.Email)
}
