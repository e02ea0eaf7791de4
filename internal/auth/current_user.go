package auth

import (
	"context"
	"errors"
	"fmt"

	pkgAuth "github.com/angelmondragon/authsys-backend/pkg/auth"
	"github.com/angelmondragon/authsys-backend/pkg/config"
	"github.com/angelmondragon/authsys-backend/pkg/db/models"
	"github.com/angelmondragon/authsys-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/authsys-backend/pkg/errors"
	"gorm.io/gorm"
)

type currentUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// CurrentUserResolver turns a bearer token into a stored user through an
// ordered pipeline: verify token, load user, then the optional guards below.
// A token whose subject no longer exists fails the same way an invalid token
// does; the response never distinguishes the two.
type CurrentUserResolver struct {
	users  currentUserRepository
	jwtCfg config.JWTConfig
}

// NewCurrentUserResolver builds the resolver used by the auth middleware.
func NewCurrentUserResolver(repo currentUserRepository, jwtCfg config.JWTConfig) (*CurrentUserResolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &CurrentUserResolver{users: repo, jwtCfg: jwtCfg}, nil
}

// Resolve verifies the token and loads the subject's user record.
func (r *CurrentUserResolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := pkgAuth.ParseAccessToken(r.jwtCfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthenticated, err, "could not validate credentials")
	}

	email := claims.Subject
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthenticated, "could not validate credentials")
	}

	user, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthenticated, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	return user, nil
}

// RequireActive guards against resolved but deactivated accounts.
func RequireActive(user *models.User) error {
	if user == nil || !user.IsActive {
		return pkgerrors.New(pkgerrors.CodeInactiveAccount, "inactive user")
	}
	return nil
}

// RequireRole guards operations restricted to a single role.
func RequireRole(user *models.User, role enums.UserRole) error {
	if user == nil || user.Role != role {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not enough permissions")
	}
	return nil
}
