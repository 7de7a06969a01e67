// Package web provides the HTTP API for decks, cards, sign-in and bulk import.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JonMunkholm/flashcards/internal/cardcsv"
	"github.com/JonMunkholm/flashcards/internal/config"
	"github.com/JonMunkholm/flashcards/internal/core"
	mw "github.com/JonMunkholm/flashcards/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Service is the application surface the handlers call. *core.Service
// implements it.
type Service interface {
	RequestSignIn(ctx context.Context, email string) error
	VerifySignIn(ctx context.Context, email, code string) (*core.SignInResult, error)
	Authenticate(ctx context.Context, token string) (*core.User, error)
	SignOut(ctx context.Context, token string) error

	ListDecks(ctx context.Context, ownerID uuid.UUID) ([]core.Deck, error)
	GetDeck(ctx context.Context, ownerID, deckID uuid.UUID) (*core.Deck, error)
	CreateDeck(ctx context.Context, ownerID uuid.UUID, in core.DeckInput) (*core.Deck, error)
	UpdateDeck(ctx context.Context, ownerID, deckID uuid.UUID, upd core.DeckUpdate) (*core.Deck, error)

	ListCards(ctx context.Context, ownerID, deckID uuid.UUID) ([]core.Card, error)
	CreateCard(ctx context.Context, ownerID, deckID uuid.UUID, in core.CardInput) (*core.Card, error)
	BulkCreateCards(ctx context.Context, ownerID, deckID uuid.UUID, records []cardcsv.CardRecord) ([]core.Card, error)
	UpdateCard(ctx context.Context, ownerID, cardID uuid.UUID, upd core.CardUpdate) (*core.Card, error)
	DeleteCard(ctx context.Context, ownerID, cardID uuid.UUID) error

	PreviewImport(fileName string, data []byte) (*core.ImportPreview, error)
	ImportCards(ctx context.Context, ownerID, deckID uuid.UUID, fileName string, data []byte) (*core.ImportResult, error)
	ImportStatus() core.ImportLimiterStatus
}

var _ Service = (*core.Service)(nil)

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the flashcards API.
type Server struct {
	service  Service
	cfg      *config.Config
	db       Pinger
	router   *chi.Mux
	server   *http.Server
	limiters []*rateLimiter
}

// NewServer creates a Server. db may be nil, in which case the health check
// skips the database.
func NewServer(service Service, cfg *config.Config, db Pinger) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		db:      db,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	if d := s.cfg.Server.RequestTimeout; d > 0 {
		s.router.Use(middleware.Timeout(d))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute).middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	signInLimit := s.limit(s.cfg.Rate.SignInLimit)
	importLimit := s.limit(s.cfg.Rate.ImportLimit)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(signInLimit).Post("/sign-in", s.handleRequestSignIn)
			r.With(signInLimit).Post("/verify", s.handleVerifySignIn)
			r.Post("/sign-out", s.handleSignOut)
			r.With(mw.RequireUser(s.service)).Get("/session", s.handleSession)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireUser(s.service))

			r.Get("/decks", s.handleListDecks)
			r.Post("/decks", s.handleCreateDeck)
			r.Get("/decks/{deckID}", s.handleGetDeck)
			r.Patch("/decks/{deckID}", s.handleUpdateDeck)

			r.Get("/decks/{deckID}/cards", s.handleListCards)
			r.Post("/decks/{deckID}/cards", s.handleCreateCard)
			r.Post("/decks/{deckID}/cards/bulk", s.handleBulkCreateCards)
			r.Patch("/cards/{cardID}", s.handleUpdateCard)
			r.Delete("/cards/{cardID}", s.handleDeleteCard)

			r.With(importLimit).Post("/decks/{deckID}/import", s.handleImport)
			r.With(importLimit).Post("/import/preview", s.handlePreviewImport)
		})
	})
}

// limit returns a per-route rate limit, or a pass-through when rate limiting
// is disabled.
func (s *Server) limit(perMinute int) func(http.Handler) http.Handler {
	if !s.cfg.Rate.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.newRateLimiter(perMinute).middleware
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	slog.Info("starting server", "addr", sc.Addr())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its rate limiters.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter is a fixed-window request counter per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func (s *Server) newRateLimiter(perMinute int) *rateLimiter {
	rl := newRateLimiter(perMinute, time.Minute)
	s.limiters = append(s.limiters, rl)
	return rl
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup drops visitors idle for two windows until stop is called.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// allow reports whether ip has a request left in the current window and
// consumes it.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors[ip]
	if !ok || now.Sub(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return rl.rate > 0
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(mw.ClientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			respondError(w, r, errRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
