package middleware

import (
	"net/http"

	"github.com/angelmondragon/authsys-backend/api/responses"
	"github.com/angelmondragon/authsys-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/authsys-backend/pkg/errors"
	"github.com/angelmondragon/authsys-backend/pkg/logger"
)

func RequireRole(role enums.UserRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != string(role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "not enough permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
