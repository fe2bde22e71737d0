package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	subscribers "temperature-monitor/internal/subscribers/domain"
)

// SubscriberRepository is an in-memory subscriber store.
type SubscriberRepository struct {
	mu     sync.RWMutex
	byChat map[int64]subscribers.Subscriber
}

// NewSubscriberRepository constructs an empty repository.
func NewSubscriberRepository() *SubscriberRepository {
	return &SubscriberRepository{byChat: make(map[int64]subscribers.Subscriber)}
}

// Get returns a copy of the record or nil, nil.
func (r *SubscriberRepository) Get(_ context.Context, chatID int64) (*subscribers.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.byChat[chatID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

// Upsert creates or replaces a record.
func (r *SubscriberRepository) Upsert(_ context.Context, sub subscribers.Subscriber) error {
	if sub.ChatID == 0 {
		return subscribers.ErrInvalidChatID
	}
	r.mu.Lock()
	r.byChat[sub.ChatID] = sub
	r.mu.Unlock()
	return nil
}

// Deactivate marks an existing record inactive.
func (r *SubscriberRepository) Deactivate(_ context.Context, chatID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.byChat[chatID]
	if !ok {
		return subscribers.ErrStateConflict
	}
	sub.IsActive = false
	sub.LastUpdated = at
	r.byChat[chatID] = sub
	return nil
}

// ListActive returns active chat ids in ascending order.
func (r *SubscriberRepository) ListActive(_ context.Context) ([]int64, error) {
	r.mu.RLock()
	out := make([]int64, 0, len(r.byChat))
	for id, sub := range r.byChat {
		if sub.IsActive {
			out = append(out, id)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
