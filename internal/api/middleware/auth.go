package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "sigcheck/internal/api/context"
	"sigcheck/internal/pkg/errors"
	"sigcheck/internal/platform/auth"

	"github.com/rs/zerolog/log"
)

// AuthMiddleware guards a route with a bearer token carrying scope. It lets
// every request through when the token service has no secret configured.
type AuthMiddleware struct {
	tokenSvc *auth.TokenService
	scope    string
}

func NewAuthMiddleware(tokenSvc *auth.TokenService, scope string) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, scope: scope}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.tokenSvc.Enabled() {
			next(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := m.tokenSvc.ValidateToken(parts[1])
		if err != nil {
			log.Warn().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg("rejected bearer token")
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired token", nil)
			return
		}

		if m.scope != "" && !claims.HasScope(m.scope) {
			log.Warn().Str("request_id", RequestIDFrom(r.Context())).Str("subject", claims.Subject).Str("scope", m.scope).Msg("token missing scope")
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		next(w, r.WithContext(ctx))
	}
}
