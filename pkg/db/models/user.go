package models

import (
	"strings"
	"time"

	"github.com/angelmondragon/authsys-backend/pkg/enums"
	"github.com/google/uuid"
)

// User represents the canonical identity entity.
type User struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Email         string           `gorm:"type:text;not null;uniqueIndex"`
	Username      string           `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash  string           `gorm:"column:password_hash;not null"`
	FirstName     string           `gorm:"column:first_name"`
	LastName      string           `gorm:"column:last_name"`
	Role          enums.UserRole   `gorm:"type:text;not null;default:user"`
	Status        enums.UserStatus `gorm:"type:text;not null;default:pending"`
	IsActive      bool             `gorm:"column:is_active;not null;default:true"`
	IsVerified    bool             `gorm:"column:is_verified;not null;default:false"`
	EmailVerified bool             `gorm:"column:email_verified;not null;default:false"`
	PhoneVerified bool             `gorm:"column:phone_verified;not null;default:false"`
	LastLoginAt   *time.Time       `gorm:"column:last_login_at"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

const recentActivityWindow = 30 * 24 * time.Hour

// FullName returns first+last name, falling back to the username when neither
// name field is set.
func (u *User) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Username
	}
	return name
}

// IsRecentlyActive reports whether the user logged in within the last 30 days.
func (u *User) IsRecentlyActive(now time.Time) bool {
	if u.LastLoginAt == nil {
		return false
	}
	return u.LastLoginAt.After(now.Add(-recentActivityWindow))
}

// AccountAgeDays returns the whole days elapsed since account creation.
func (u *User) AccountAgeDays(now time.Time) int {
	if u.CreatedAt.IsZero() || now.Before(u.CreatedAt) {
		return 0
	}
	return int(now.Sub(u.CreatedAt).Hours() / 24)
}

// CanAuthenticate reports whether the account is allowed to log in.
func (u *User) CanAuthenticate() bool {
	return u.IsActive && u.Status == enums.UserStatusActive
}
