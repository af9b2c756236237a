package jwt

import (
	"context"
	"net/http"
)

type ctxKey string

const claimsCtxKey ctxKey = "admin_claims"

// AuthMiddlewareFunc gates next behind a valid bearer token, requiring the
// caller's role to be one of allowed.
func AuthMiddlewareFunc(m *Manager, allowed ...Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := FromAuthorization(r.Header.Get("Authorization"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := m.ParseAndValidate(tokenStr)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			if len(allowed) > 0 && !RoleAllowed(claims, allowed...) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), claimsCtxKey, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireClaims returns the *Claims placed on ctx by AuthMiddlewareFunc.
func RequireClaims(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey).(*Claims)
	return c, ok
}
