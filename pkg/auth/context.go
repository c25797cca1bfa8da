package auth

import (
	"context"
	"errors"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const adminKey contextKey = "admin"

// ErrNotAdmin is returned when no admin principal exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrNotAdmin = errors.New("admin session not found in context")

// AdminFromCtx extracts the authenticated admin name from the request context.
func AdminFromCtx(ctx context.Context) (string, error) {
	name, ok := ctx.Value(adminKey).(string)
	if !ok || name == "" {
		return "", ErrNotAdmin
	}
	return name, nil
}

// IsAdmin reports whether the request context carries an admin principal.
func IsAdmin(ctx context.Context) bool {
	_, err := AdminFromCtx(ctx)
	return err == nil
}

// WithAdmin returns a new context with the given admin attached.
// Used by authentication middleware after validating the session.
func WithAdmin(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, adminKey, name)
}
