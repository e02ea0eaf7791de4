package models

import (
	"testing"
	"time"

	"github.com/angelmondragon/authsys-backend/pkg/enums"
)

func TestFullName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{name: "both names", user: User{FirstName: "Ada", LastName: "Lovelace", Username: "ada"}, expected: "Ada Lovelace"},
		{name: "first only", user: User{FirstName: "Ada", Username: "ada"}, expected: "Ada"},
		{name: "last only", user: User{LastName: "Lovelace", Username: "ada"}, expected: "Lovelace"},
		{name: "fallback to username", user: User{Username: "ada"}, expected: "ada"},
		{name: "whitespace names fall back", user: User{FirstName: "  ", Username: "ada"}, expected: "ada"},
	}

	for _, tt := range tests {
		if got := tt.user.FullName(); got != tt.expected {
			t.Fatalf("%s: expected %q got %q", tt.name, tt.expected, got)
		}
	}
}

func TestIsRecentlyActive(t *testing.T) {
	now := time.Now().UTC()

	u := User{}
	if u.IsRecentlyActive(now) {
		t.Fatal("user with no logins should not be recently active")
	}

	recent := now.Add(-29 * 24 * time.Hour)
	u.LastLoginAt = &recent
	if !u.IsRecentlyActive(now) {
		t.Fatal("login 29 days ago should count as recent")
	}

	stale := now.Add(-31 * 24 * time.Hour)
	u.LastLoginAt = &stale
	if u.IsRecentlyActive(now) {
		t.Fatal("login 31 days ago should not count as recent")
	}
}

func TestAccountAgeDays(t *testing.T) {
	now := time.Now().UTC()

	u := User{}
	if got := u.AccountAgeDays(now); got != 0 {
		t.Fatalf("zero created_at should yield 0, got %d", got)
	}

	u.CreatedAt = now.Add(-10*24*time.Hour - time.Hour)
	if got := u.AccountAgeDays(now); got != 10 {
		t.Fatalf("expected 10 days, got %d", got)
	}

	u.CreatedAt = now.Add(time.Hour)
	if got := u.AccountAgeDays(now); got != 0 {
		t.Fatalf("future created_at should yield 0, got %d", got)
	}
}

func TestCanAuthenticate(t *testing.T) {
	u := User{IsActive: true, Status: enums.UserStatusActive}
	if !u.CanAuthenticate() {
		t.Fatal("active user should authenticate")
	}

	u.IsActive = false
	if u.CanAuthenticate() {
		t.Fatal("inactive flag should block authentication")
	}

	u.IsActive = true
	u.Status = enums.UserStatusSuspended
	if u.CanAuthenticate() {
		t.Fatal("suspended status should block authentication")
	}
}
