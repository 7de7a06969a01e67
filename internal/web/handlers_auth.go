package web

import (
	"net/http"

	mw "github.com/JonMunkholm/flashcards/internal/web/middleware"
)

type signInRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// handleRequestSignIn emails a one-time sign-in code.
func (s *Server) handleRequestSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.service.RequestSignIn(withRequestMetadata(r.Context(), r), req.Email); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "code_sent"})
}

// handleVerifySignIn exchanges a sign-in code for a session. The token is
// returned in the body for API clients and set as a cookie for browsers.
func (s *Server) handleVerifySignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.VerifySignIn(withRequestMetadata(r.Context(), r), req.Email, req.Code)
	if err != nil {
		respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cfg.Security.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, result)
}

// handleSignOut ends the current session, if any, and clears the cookie.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if token := mw.SessionToken(r); token != "" {
		if err := s.service.SignOut(r.Context(), token); err != nil {
			respondError(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Security.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}
