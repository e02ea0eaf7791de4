package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/authsys-backend/api/middleware"
	"github.com/angelmondragon/authsys-backend/api/responses"
	"github.com/angelmondragon/authsys-backend/internal/users"
	"github.com/angelmondragon/authsys-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/authsys-backend/pkg/errors"
	"github.com/angelmondragon/authsys-backend/pkg/logger"
)

// CurrentUserProfile is the compact shape returned by the profile endpoint.
type CurrentUserProfile struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type userDeactivator interface {
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type userLister interface {
	List(ctx context.Context) ([]models.User, error)
}

// UsersMe returns the authenticated user's profile.
func UsersMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.UserFromContext(r.Context())
		if user == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "could not validate credentials"))
			return
		}

		responses.WriteJSON(w, CurrentUserProfile{
			Email:    user.Email,
			Username: user.Username,
			FullName: user.FullName(),
			Role:     string(user.Role),
		})
	}
}

// UsersDeactivateMe soft-deletes the caller's own account.
func UsersDeactivateMe(repo userDeactivator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.UserFromContext(r.Context())
		if user == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "could not validate credentials"))
			return
		}
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users repository unavailable"))
			return
		}

		if err := repo.SoftDelete(r.Context(), user.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate user"))
			return
		}

		responses.WriteJSON(w, map[string]string{"message": "account deactivated"})
	}
}

// UsersList returns all accounts, oldest first. Admin only; the router
// applies the role guard.
func UsersList(repo userLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users repository unavailable"))
			return
		}

		records, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users"))
			return
		}

		now := time.Now().UTC()
		dtos := make([]*users.UserDTO, 0, len(records))
		for i := range records {
			dtos = append(dtos, users.FromModel(&records[i], now))
		}

		responses.WriteJSON(w, map[string][]*users.UserDTO{"users": dtos})
	}
}
