package repository

import (
	"context"
	"sync"
	"time"

	"tourbook/internal/models"
)

type memoryEntry struct {
	draft     *models.BookingDraft
	expiresAt time.Time
}

type MemoryDraftRepository struct {
	drafts     sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemoryDraftRepository(ttl time.Duration) *MemoryDraftRepository {
	return &MemoryDraftRepository{
		ttl: ttl,
	}
}

func (r *MemoryDraftRepository) GetDraft(ctx context.Context, id string) (*models.BookingDraft, error) {
	val, ok := r.drafts.Load(id)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.drafts.Delete(id)
		return nil, nil
	}
	return entry.draft, nil
}

func (r *MemoryDraftRepository) SaveDraft(ctx context.Context, draft *models.BookingDraft) error {
	r.drafts.Store(draft.ID, &memoryEntry{
		draft:     draft,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryDraftRepository) DeleteDraft(ctx context.Context, id string) error {
	r.drafts.Delete(id)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryDraftRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
