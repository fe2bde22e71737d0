package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	subscribers "temperature-monitor/internal/subscribers/domain"
)

func TestSubscriberRepositoryActiveFilter(t *testing.T) {
	repo := NewSubscriberRepository()
	ctx := context.Background()
	now := time.Date(2026, 1, 26, 8, 0, 0, 0, time.UTC)
	for _, sub := range []subscribers.Subscriber{
		{ChatID: 3, IsActive: true, SubscribedAt: now, LastUpdated: now},
		{ChatID: 1, IsActive: true, SubscribedAt: now, LastUpdated: now},
		{ChatID: 2, IsActive: false, SubscribedAt: now, LastUpdated: now},
	} {
		if err := repo.Upsert(ctx, sub); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	ids, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Fatalf("unexpected active ids %v", ids)
	}
}

func TestSubscriberRepositoryDeactivateUnknown(t *testing.T) {
	repo := NewSubscriberRepository()
	if err := repo.Deactivate(context.Background(), 9, time.Now()); !errors.Is(err, subscribers.ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}
	if sub, err := repo.Get(context.Background(), 9); sub != nil || err != nil {
		t.Fatalf("expected nil, nil, got %v %v", sub, err)
	}
}
