package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	telemetry "temperature-monitor/internal/telemetry/domain"
)

// ReadingRepository is an in-memory reading log for demo/testing.
type ReadingRepository struct {
	mu       sync.RWMutex
	readings []telemetry.Reading
}

// NewReadingRepository constructs a repository.
func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{}
}

// Insert appends a reading.
func (r *ReadingRepository) Insert(_ context.Context, reading telemetry.Reading) error {
	if reading.ServerTimestamp.IsZero() {
		return errors.New("memory reading repo: missing server timestamp")
	}
	r.mu.Lock()
	r.readings = append(r.readings, reading.Clone())
	r.mu.Unlock()
	return nil
}

// ListSince returns readings at or after since, oldest first.
func (r *ReadingRepository) ListSince(_ context.Context, since time.Time) ([]telemetry.Reading, error) {
	r.mu.RLock()
	result := make([]telemetry.Reading, 0, len(r.readings))
	for _, reading := range r.readings {
		if reading.ServerTimestamp.Before(since) {
			continue
		}
		result = append(result, reading.Clone())
	}
	r.mu.RUnlock()
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ServerTimestamp.Before(result[j].ServerTimestamp)
	})
	return result, nil
}

// Len returns the number of stored readings.
func (r *ReadingRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.readings)
}

// LatestStore keeps the last reading in process memory.
type LatestStore struct {
	mu      sync.RWMutex
	reading *telemetry.Reading
}

// NewLatestStore constructs a latest store.
func NewLatestStore() *LatestStore {
	return &LatestStore{}
}

// Put replaces the latest reading when it is not older than the current one.
func (s *LatestStore) Put(_ context.Context, reading telemetry.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reading != nil && reading.ServerTimestamp.Before(s.reading.ServerTimestamp) {
		return nil
	}
	clone := reading.Clone()
	s.reading = &clone
	return nil
}

// Get returns the latest reading or nil.
func (s *LatestStore) Get(_ context.Context) (*telemetry.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.reading == nil {
		return nil, nil
	}
	clone := s.reading.Clone()
	return &clone, nil
}
