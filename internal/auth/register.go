package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/authsys-backend/internal/users"
	"github.com/angelmondragon/authsys-backend/pkg/db/models"
	"github.com/angelmondragon/authsys-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/authsys-backend/pkg/errors"
	"gorm.io/gorm"
)

// RegisterService handles the account-creation transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner txRunner
	Hasher   passwordHasher
	// UserRepoFactory builds the repository bound to the transaction; tests
	// substitute stubs here.
	UserRepoFactory func(tx *gorm.DB) registerUserRepository
}

type registerService struct {
	tx       txRunner
	hasher   passwordHasher
	userRepo func(tx *gorm.DB) registerUserRepository
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Hasher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "password hasher required")
	}
	repoFactory := params.UserRepoFactory
	if repoFactory == nil {
		repoFactory = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	return &registerService{
		tx:       params.TxRunner,
		hasher:   params.Hasher,
		userRepo: repoFactory,
	}, nil
}

// Register creates a new active account. Duplicate checks run inside the
// transaction, email before username.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if username == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepo(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeDuplicateEmail, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		if _, err := userRepo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeDuplicateUsername, "username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		// New accounts start active; activation-by-email is not part of this flow.
		if _, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			Username:     username,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Role:         enums.UserRoleUser,
			Status:       enums.UserStatusActive,
			IsActive:     true,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		return nil
	})
}
