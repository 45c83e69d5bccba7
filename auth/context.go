package auth

import "context"

// contextKey is a private type for context keys so values set by this
// package cannot collide with other packages.
type contextKey string

const userIDContextKey contextKey = "auth_user_id"

// WithUserID returns a child context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext extracts the authenticated user's ID set by
// RequireSession. The second return value is false when the request was not
// authenticated.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}
