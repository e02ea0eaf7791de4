package middleware

import (
	"context"

	"github.com/angelmondragon/authsys-backend/pkg/db/models"
)

type contextKey string

const (
	ctxUser   contextKey = "current_user"
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

// UserFromContext returns the authenticated user seeded by the Auth
// middleware, or nil.
func UserFromContext(ctx context.Context) *models.User {
	if ctx == nil {
		return nil
	}
	if u, ok := ctx.Value(ctxUser).(*models.User); ok {
		return u
	}
	return nil
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithUser injects the authenticated user and its derived fields into the
// context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if user == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, ctxUser, user)
	ctx = context.WithValue(ctx, ctxUserID, user.ID.String())
	return context.WithValue(ctx, ctxRole, string(user.Role))
}
