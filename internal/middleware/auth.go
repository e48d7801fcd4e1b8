package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tanakrit/postboard-backend/internal/auth"
	"github.com/tanakrit/postboard-backend/internal/webutil"
)

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID string
	Email  string
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a child context carrying the caller's identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the identity set by RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// RequireAuth validates the bearer token from the Authorization header and
// injects the caller's identity into the request context. A missing token is
// 401; a token that fails verification is 403.
func RequireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				webutil.Error(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				webutil.Error(w, http.StatusUnauthorized, "authorization header format must be Bearer {token}")
				return
			}

			claims, err := auth.VerifyToken(parts[1], secret)
			if err != nil {
				webutil.Error(w, http.StatusForbidden, "invalid token")
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: claims.UserID, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
