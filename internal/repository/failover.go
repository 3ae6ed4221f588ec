package repository

import (
	"context"
	"sync/atomic"
	"time"

	"tourbook/internal/domain"
	"tourbook/internal/models"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the primary stays benched after a failure
// before it is probed again.
const recoveryInterval = time.Minute

// FailoverDraftRepository serves drafts from a primary repository (Redis)
// and falls back to an in-memory one when the primary is unreachable.
type FailoverDraftRepository struct {
	primary   domain.DraftRepository
	fallback  domain.DraftRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverDraftRepository(primary, fallback domain.DraftRepository, logger *zerolog.Logger) *FailoverDraftRepository {
	return &FailoverDraftRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverDraftRepository) GetDraft(ctx context.Context, id string) (*models.BookingDraft, error) {
	if r.primaryUsable() {
		draft, err := r.primary.GetDraft(ctx, id)
		if err == nil {
			r.markUp()
			return draft, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetDraft(ctx, id)
}

func (r *FailoverDraftRepository) SaveDraft(ctx context.Context, draft *models.BookingDraft) error {
	if r.primaryUsable() {
		err := r.primary.SaveDraft(ctx, draft)
		if err == nil {
			r.markUp()
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SaveDraft(ctx, draft)
}

func (r *FailoverDraftRepository) DeleteDraft(ctx context.Context, id string) error {
	if r.primaryUsable() {
		err := r.primary.DeleteDraft(ctx, id)
		if err == nil {
			r.markUp()
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.DeleteDraft(ctx, id)
}

func (r *FailoverDraftRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.primaryUsable() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			r.markUp()
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}

// primaryUsable reports whether the primary should be tried: either it is
// healthy, or it has been down long enough to probe again.
func (r *FailoverDraftRepository) primaryUsable() bool {
	if !r.isDown.Load() {
		return true
	}
	last := time.Unix(0, r.lastCheck.Load())
	return time.Since(last) > recoveryInterval
}

func (r *FailoverDraftRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary draft repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverDraftRepository) markUp() {
	if r.isDown.Load() {
		r.logger.Info().Msg("primary draft repository recovered")
		r.isDown.Store(false)
	}
}
