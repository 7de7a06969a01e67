package core

// scheduler.go runs periodic maintenance: expired sessions and sign-in codes
// are purged so the auth tables stay small. Failures are logged and retried
// on the next tick; they never stop the server.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultMaintenanceInterval is used when the configured interval is not positive.
const DefaultMaintenanceInterval = time.Hour

// StartMaintenance purges expired auth rows immediately and then every
// interval until ctx is cancelled. Run it in its own goroutine.
func (s *Service) StartMaintenance(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultMaintenanceInterval
	}
	slog.Info("maintenance scheduler started", "interval", interval)

	s.runMaintenance(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("maintenance scheduler stopped")
			return
		case <-ticker.C:
			s.runMaintenance(ctx)
		}
	}
}

// runMaintenance performs one purge cycle.
func (s *Service) runMaintenance(ctx context.Context) {
	start := time.Now()

	sessions, codes, err := s.store.PurgeExpired(ctx, s.now())
	if err != nil {
		slog.Error("purge expired failed", "error", err)
		return
	}

	slog.Info("purged expired auth rows",
		"sessions", sessions,
		"codes", codes,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
