package leaderboard

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RefreshWorker keeps the cached overview warm by rebuilding it on an
// interval. Without it the first read after every cache expiry pays the
// full assembly cost.
type RefreshWorker struct {
	svc      *Service
	logger   zerolog.Logger
	interval time.Duration
}

// NewRefreshWorker constructs a cache refresh worker.
func NewRefreshWorker(svc *Service, interval time.Duration, logger zerolog.Logger) *RefreshWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RefreshWorker{
		svc:      svc,
		logger:   logger.With().Str("component", "leaderboard_refresh_worker").Logger(),
		interval: interval,
	}
}

// Run blocks until context cancellation.
func (w *RefreshWorker) Run(ctx context.Context) error {
	if w.svc == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// run immediately
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *RefreshWorker) tick(ctx context.Context) {
	w.svc.Invalidate(ctx)
	if _, err := w.svc.Overview(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("leaderboard refresh failed")
	}
}
