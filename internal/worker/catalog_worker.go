package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tourbook/internal/domain"
)

// CatalogRefreshWorker re-reads the activity list on an interval so the
// catalog cache stays warm and price changes propagate without waiting for
// a visitor to miss the cache.
type CatalogRefreshWorker struct {
	catalog     domain.TourCatalog
	interval    time.Duration
	retryPolicy RetryPolicy
	logger      *zerolog.Logger
}

func NewCatalogRefreshWorker(catalog domain.TourCatalog, interval time.Duration, retry RetryPolicy, logger *zerolog.Logger) *CatalogRefreshWorker {
	if retry.MaxRetries == 0 {
		retry = DefaultRetryPolicy()
	}
	return &CatalogRefreshWorker{
		catalog:     catalog,
		interval:    interval,
		retryPolicy: retry,
		logger:      logger,
	}
}

// Start blocks until ctx is cancelled. An interval of zero disables the
// worker entirely.
func (w *CatalogRefreshWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info().Msg("Catalog refresh worker is disabled")
		return
	}

	w.logger.Info().Dur("interval", w.interval).Msg("Catalog refresh worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RefreshOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Catalog refresh worker stopped")
			return
		case <-ticker.C:
			w.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce performs one refresh with backoff retries.
func (w *CatalogRefreshWorker) RefreshOnce(ctx context.Context) {
	for attempt := 1; ; attempt++ {
		tours, err := w.catalog.ListTours(ctx)
		if err == nil {
			w.logger.Debug().Int("tours", len(tours)).Msg("catalog refreshed")
			return
		}

		if attempt > w.retryPolicy.MaxRetries {
			w.logger.Error().Err(err).Int("attempts", attempt).Msg("catalog refresh failed, giving up until next tick")
			return
		}

		delay := w.retryPolicy.NextDelay(attempt)
		w.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("catalog refresh failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
