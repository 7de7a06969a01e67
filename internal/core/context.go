package core

import "context"

type contextKey string

const (
	ctxKeyUser      contextKey = "user"
	ctxKeyIPAddress contextKey = "ip"
	ctxKeyUserAgent contextKey = "ua"
)

// ContextWithUser stores the signed-in user.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

// UserFromContext returns the signed-in user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(ctxKeyUser).(*User)
	return user, ok && user != nil
}

// ContextWithIPAddress adds the client IP address to context for logging.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithUserAgent adds the User-Agent to context for logging.
func ContextWithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// GetIPAddressFromContext extracts IP address from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// GetUserAgentFromContext extracts User-Agent from context.
func GetUserAgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		return v
	}
	return ""
}
