package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/authsys-backend/pkg/db/models"
	"github.com/angelmondragon/authsys-backend/pkg/enums"
)

// UserDTO is the transport shape that omits the credential hash and carries
// the computed fields.
type UserDTO struct {
	ID               uuid.UUID        `json:"id"`
	Email            string           `json:"email"`
	Username         string           `json:"username"`
	FirstName        string           `json:"first_name,omitempty"`
	LastName         string           `json:"last_name,omitempty"`
	FullName         string           `json:"full_name"`
	Role             enums.UserRole   `json:"role"`
	Status           enums.UserStatus `json:"status"`
	IsActive         bool             `json:"is_active"`
	IsVerified       bool             `json:"is_verified"`
	EmailVerified    bool             `json:"email_verified"`
	PhoneVerified    bool             `json:"phone_verified"`
	LastLoginAt      *time.Time       `json:"last_login_at,omitempty"`
	IsRecentlyActive bool             `json:"is_recently_active"`
	AccountAgeDays   int              `json:"account_age_days"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         enums.UserRole
	Status       enums.UserStatus
	IsActive     bool
}

func FromModel(u *models.User, now time.Time) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		FullName:         u.FullName(),
		Role:             u.Role,
		Status:           u.Status,
		IsActive:         u.IsActive,
		IsVerified:       u.IsVerified,
		EmailVerified:    u.EmailVerified,
		PhoneVerified:    u.PhoneVerified,
		LastLoginAt:      u.LastLoginAt,
		IsRecentlyActive: u.IsRecentlyActive(now),
		AccountAgeDays:   u.AccountAgeDays(now),
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.UserRoleUser
	}
	status := c.Status
	if status == "" {
		status = enums.UserStatusPending
	}

	return &models.User{
		ID:           uuid.New(),
		Email:        c.Email,
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Role:         role,
		Status:       status,
		IsActive:     c.IsActive,
	}
}
