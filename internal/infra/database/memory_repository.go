package database

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"wabridge/internal/domain/message"
)

// memoryRepository guarda o diário em memória com expiração
type memoryRepository struct {
	cache *cache.Cache
}

// NewMemoryRepository cria um diário em memória; registros expiram após retention
func NewMemoryRepository(retention time.Duration) message.Repository {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &memoryRepository{cache: cache.New(retention, time.Hour)}
}

func (r *memoryRepository) Save(_ context.Context, record *message.Record) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	copied := *record
	r.cache.Set(record.ID, &copied, cache.DefaultExpiration)
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*message.Record, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, message.ErrMessageNotFound
	}
	copied := *v.(*message.Record)
	return &copied, nil
}

func (r *memoryRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	removed := 0
	for id, item := range r.cache.Items() {
		if rec, ok := item.Object.(*message.Record); ok && rec.CreatedAt.Before(cutoff) {
			r.cache.Delete(id)
			removed++
		}
	}
	return removed, nil
}
