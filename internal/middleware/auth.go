package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-wbs-tracker/internal/model"
)

type tokenAuthenticator interface {
	Authenticate(accessToken string) (*model.AuthClaims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	authenticator tokenAuthenticator
}

func NewAuthMiddleware(authenticator tokenAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// RequireAuth gates mutating routes. A missing bearer token is 401; a
// token that is present but fails verification is 403.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		token := strings.TrimSpace(header[len("bearer "):])
		if token == "" {
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := m.authenticator.Authenticate(token)
		if err != nil {
			writeJSONError(w, http.StatusForbidden, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ClaimsFromContext(ctx context.Context) (*model.AuthClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.AuthClaims)
	return claims, ok
}
