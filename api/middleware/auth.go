package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/authsys-backend/api/responses"
	internalAuth "github.com/angelmondragon/authsys-backend/internal/auth"
	"github.com/angelmondragon/authsys-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/authsys-backend/pkg/errors"
	"github.com/angelmondragon/authsys-backend/pkg/logger"
)

// UserResolver turns a bearer token into the stored user.
type UserResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// Auth validates a bearer token, loads the subject's user record and seeds
// the request context. Deactivated accounts are rejected here so protected
// handlers only ever see active users.
func Auth(resolver UserResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "missing credentials"))
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			if err := internalAuth.RequireActive(user); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUser(r.Context(), user)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    user.ID.String(),
					"actor_role": string(user.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
