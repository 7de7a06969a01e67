package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/flashcards/internal/core"
	mw "github.com/JonMunkholm/flashcards/internal/web/middleware"
)

// withRequestMetadata adds the client IP and User-Agent to ctx for service
// logging.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, mw.ClientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}

// currentUser returns the user stored by RequireUser. Handlers behind the
// guard can rely on it being present.
func currentUser(r *http.Request) *core.User {
	user, _ := core.UserFromContext(r.Context())
	return user
}
