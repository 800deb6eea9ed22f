package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"medstaff-dashboard/internal/infra/metrics"
)

// Purger deletes expired key-value entries and reports how many were removed.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// ExpiryWorker periodically purges expired snapshot and cache entries from stores
// that do not expire keys on their own.
type ExpiryWorker struct {
	interval time.Duration
	store    Purger
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, store Purger, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		store:    store,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single purge.
func (w *ExpiryWorker) RunOnce(ctx context.Context) int64 {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	n, err := w.store.PurgeExpired(runCtx)
	if err != nil {
		w.log.Error().Err(err).Msg("expiry worker error")
		return 0
	}
	if n > 0 {
		metrics.AddKVPurged(n)
		w.log.Info().Int64("count", n).Msg("expired entries purged")
	}
	return n
}
