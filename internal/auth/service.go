package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/authsys-backend/pkg/auth"
	"github.com/angelmondragon/authsys-backend/pkg/config"
	"github.com/angelmondragon/authsys-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/authsys-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "incorrect username/email or password"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
}

type service struct {
	users    userRepository
	verifier passwordVerifier
	jwtCfg   config.JWTConfig
}

type userRepository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type passwordVerifier interface {
	Verify(password, encoded string) bool
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo  userRepository
	Verifier  passwordVerifier
	JWTConfig config.JWTConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Verifier == nil {
		return nil, fmt.Errorf("password verifier is required")
	}
	return &service{
		users:    params.UserRepo,
		verifier: params.Verifier,
		jwtCfg:   params.JWTConfig,
	}, nil
}

// Login authenticates the identifier/password pair and mints a bearer token.
// Unknown identifiers and wrong passwords collapse into one failure so the
// response never reveals whether the account exists.
func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCreds, invalidCredentialsMessage)
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCreds, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	if !s.verifier.Verify(req.Password, user.PasswordHash) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCreds, invalidCredentialsMessage)
	}

	if !user.CanAuthenticate() {
		return nil, pkgerrors.New(pkgerrors.CodeAccountNotActive, "user account is inactive or suspended")
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		Subject: user.Email,
		Role:    user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, nil
}
