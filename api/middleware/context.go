package middleware

import "context"

type contextKey string

const (
	ctxSessionID   contextKey = "session_id"
	ctxAdminUserID contextKey = "admin_user_id"
	ctxAdminVia    contextKey = "admin_via"
)

// SessionIDFromContext returns the anonymous cart session identifier.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// AdminUserIDFromContext returns the authenticated admin's user id, empty for
// key-based callers.
func AdminUserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAdminUserID).(string); ok {
		return v
	}
	return ""
}

// AdminViaFromContext names the credential that admitted the request
// ("key" or "session").
func AdminViaFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAdminVia).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the cart session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// WithAdminIdentity records how the request was admitted and, for session
// callers, which account it runs as.
func WithAdminIdentity(ctx context.Context, userID, via string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxAdminVia, via)
	if userID != "" {
		ctx = context.WithValue(ctx, ctxAdminUserID, userID)
	}
	return ctx
}
