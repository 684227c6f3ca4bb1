package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/heimu09/ApartXCleaning/internal/domain"
	jwtinfra "github.com/heimu09/ApartXCleaning/internal/infrastructure/jwt"
)

type contextKey string

const identityKey contextKey = "identity"

type tokenVerifier interface {
	Verify(tokenStr string, want jwtinfra.TokenType) (*jwtinfra.Claims, error)
}

// Auth returns middleware that validates the Bearer access token and injects
// the caller identity into context.
func Auth(verifier tokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := verifier.Verify(tokenStr, jwtinfra.TokenAccess)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ident := domain.Identity{UserID: claims.UserID, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying ident.
func WithIdentity(ctx context.Context, ident domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFromContext extracts the caller identity set by Auth.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(domain.Identity)
	return ident, ok
}
