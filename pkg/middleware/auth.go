package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/vanijya/pkg/auth"
	"github.com/shashiranjanraj/vanijya/pkg/response"
)

type claimsKey struct{}

// ClaimsFromCtx returns the verified identity stored by Identity, or nil.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	if c, ok := ctx.Value(claimsKey{}).(*auth.Claims); ok {
		return c
	}
	return nil
}

// Identity returns a middleware that requires a valid bearer token and
// threads the verified claims into the request context. A missing token is
// 401; an invalid, expired, or tampered one is 403.
func Identity(m *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				response.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" {
				response.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := m.Verify(token)
			if err != nil {
				response.Error(w, http.StatusForbidden, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
