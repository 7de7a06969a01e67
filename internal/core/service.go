package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/flashcards/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Service provides the business logic for decks, cards, imports and sign-in.
// It is safe for concurrent use.
type Service struct {
	store   Store
	cfg     *config.Config
	limiter *ImportLimiter
	sender  CodeSender

	now      func() time.Time
	codeCost int // bcrypt cost for sign-in codes
}

// NewService creates a Service backed by store.
func NewService(store Store, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		cfg:      cfg,
		limiter:  NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		sender:   logSender{},
		now:      time.Now,
		codeCost: bcrypt.DefaultCost,
	}
}

// SetCodeSender replaces the default sender, which only logs codes.
func (s *Service) SetCodeSender(sender CodeSender) {
	s.sender = sender
}

// ImportStatus reports import slot usage.
func (s *Service) ImportStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// withTimeout bounds ctx by d, leaving it unchanged when d is not positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
