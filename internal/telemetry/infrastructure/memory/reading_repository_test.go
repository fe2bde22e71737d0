package memory

import (
	"context"
	"testing"
	"time"

	telemetry "temperature-monitor/internal/telemetry/domain"
)

func TestReadingRepositoryListSince(t *testing.T) {
	repo := NewReadingRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 26, 10, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		if err := repo.Insert(ctx, telemetry.Reading{ID: offset.String(), ServerTimestamp: base.Add(offset)}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	list, err := repo.ListSince(ctx, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(list))
	}
	if !list[0].ServerTimestamp.Before(list[1].ServerTimestamp) {
		t.Fatalf("expected ascending order")
	}
}

func TestReadingRepositoryRejectsMissingTimestamp(t *testing.T) {
	repo := NewReadingRepository()
	if err := repo.Insert(context.Background(), telemetry.Reading{ID: "r"}); err == nil {
		t.Fatal("expected error")
	}
	if repo.Len() != 0 {
		t.Fatalf("expected nothing stored")
	}
}

func TestLatestStoreKeepsNewest(t *testing.T) {
	store := NewLatestStore()
	ctx := context.Background()
	if got, err := store.Get(ctx); err != nil || got != nil {
		t.Fatalf("expected empty store, got %+v %v", got, err)
	}
	base := time.Date(2026, 1, 26, 10, 0, 0, 0, time.UTC)
	_ = store.Put(ctx, telemetry.Reading{ID: "new", ServerTimestamp: base.Add(time.Minute)})
	_ = store.Put(ctx, telemetry.Reading{ID: "old", ServerTimestamp: base})
	got, err := store.Get(ctx)
	if err != nil || got == nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "new" {
		t.Fatalf("expected newest reading, got %s", got.ID)
	}
}
