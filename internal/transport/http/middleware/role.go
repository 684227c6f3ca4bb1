package middleware

import (
	"net/http"
)

// RequireRole returns middleware that allows access only to callers whose
// identity carries one of the provided roles (e.g. domain.RoleCustomer).
// A caller who has not selected a role yet is always forbidden.
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if ident.HasRole() {
				for _, role := range allowedRoles {
					if ident.Role == role {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			writeJSONError(w, http.StatusForbidden, "forbidden")
		})
	}
}
