package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-task-relay/internal/model"
)

type tokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*model.AuthClaims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

const (
	msgNotProvided   = "Authentication credentials were not provided."
	msgNoCredentials = "Invalid token header. No credentials provided."
	msgSpaces        = "Invalid token header. Token string should not contain spaces."
	msgInvalidToken  = "Invalid token."
)

// AuthMiddleware guards routes with "Authorization: Token <key>". The
// "Bearer" keyword is accepted as an alias.
type AuthMiddleware struct {
	authenticator tokenAuthenticator
}

func NewAuthMiddleware(authenticator tokenAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fields := strings.Fields(r.Header.Get("Authorization"))
		if len(fields) == 0 || !isTokenKeyword(fields[0]) {
			writeUnauthorized(w, msgNotProvided)
			return
		}

		switch {
		case len(fields) == 1:
			writeUnauthorized(w, msgNoCredentials)
			return
		case len(fields) > 2:
			writeUnauthorized(w, msgSpaces)
			return
		}

		claims, err := m.authenticator.Authenticate(r.Context(), fields[1])
		if err != nil {
			writeUnauthorized(w, msgInvalidToken)
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

func isTokenKeyword(keyword string) bool {
	return strings.EqualFold(keyword, "token") || strings.EqualFold(keyword, "bearer")
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Token")
	DetailField(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}
