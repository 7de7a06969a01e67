package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/flashcards/internal/core"
	"github.com/JonMunkholm/flashcards/internal/logging"
)

// SessionCookie is the cookie holding the session token for browser clients.
const SessionCookie = "session"

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*core.User, error)
}

// RequireUser rejects requests without a valid session with 401. The token
// is read from "Authorization: Bearer <token>" or the session cookie. On
// success the user is stored with core.ContextWithUser.
func RequireUser(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r.Context(), SessionToken(r))
			if err != nil {
				if !errors.Is(err, core.ErrUnauthorized) {
					logging.FromContext(r.Context()).Error("auth: session lookup failed", "error", err)
				} else {
					slog.Debug("auth: rejected request", "path", r.URL.Path, "method", r.Method)
				}
				unauthorized(w, err)
				return
			}

			ctx := core.ContextWithUser(r.Context(), user)
			ctx = logging.ContextWithUserID(ctx, user.ID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionToken extracts the bearer token or session cookie from r.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	if !errors.Is(err, core.ErrUnauthorized) {
		status = http.StatusInternalServerError
	}
	msg := core.MapError(err)

	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="flashcards"`)
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   msg.Message,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}
