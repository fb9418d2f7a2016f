package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/servicofacil/prestador-api/internal/domain"
	"github.com/servicofacil/prestador-api/internal/port"
	"github.com/servicofacil/prestador-api/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// Authenticator validates Bearer tokens and attaches the authenticated
// user to the request context. It never rejects: a missing, malformed or
// invalid credential leaves the request unauthenticated, and the access
// decision belongs to RequireAuth on protected routes. Runs once per
// request.
func Authenticator(tokens *service.TokenService, users port.UserDirectory, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				next.ServeHTTP(w, r)
				return
			}

			raw := parts[1]
			if !tokens.IsValid(raw) {
				logger.Debug("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				next.ServeHTTP(w, r)
				return
			}

			login, err := tokens.Subject(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.LoadByLogin(r.Context(), login)
			if err != nil || user == nil {
				logger.Warn("auth: token subject has no user",
					zap.String("login", login),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the authenticated user from context, or
// nil when the request is unauthenticated.
func IdentityFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(identityKey).(*domain.User)
	return u
}

// RequireAuth rejects requests that carry no authenticated identity.
func RequireAuth(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IdentityFromContext(r.Context()) == nil {
				logger.Warn("auth: unauthenticated request to protected route",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido ou inválido")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
