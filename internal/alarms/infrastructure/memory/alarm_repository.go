package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	alarms "temperature-monitor/internal/alarms/domain"
)

// AlarmRepository is an in-memory alarm log.
type AlarmRepository struct {
	mu     sync.RWMutex
	alarms []alarms.Alarm
}

// NewAlarmRepository constructs an empty repository.
func NewAlarmRepository() *AlarmRepository {
	return &AlarmRepository{}
}

// Create appends an alarm.
func (r *AlarmRepository) Create(_ context.Context, alarm alarms.Alarm) error {
	if err := alarm.Validate(); err != nil {
		return err
	}
	alarm.Temperature = copyFloat(alarm.Temperature)
	r.mu.Lock()
	r.alarms = append(r.alarms, alarm)
	r.mu.Unlock()
	return nil
}

// ListSince returns alarms with Timestamp >= since, newest first.
func (r *AlarmRepository) ListSince(_ context.Context, since time.Time) ([]alarms.Alarm, error) {
	r.mu.RLock()
	out := make([]alarms.Alarm, 0, len(r.alarms))
	for _, alarm := range r.alarms {
		if alarm.Timestamp.Before(since) {
			continue
		}
		alarm.Temperature = copyFloat(alarm.Temperature)
		out = append(out, alarm)
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Len reports the number of stored alarms.
func (r *AlarmRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.alarms)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
