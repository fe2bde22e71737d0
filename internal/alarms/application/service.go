package application

import (
	"context"
	"errors"
	"time"

	alarms "temperature-monitor/internal/alarms/domain"
)

// DefaultListWindow is the trailing window used by ListRecent.
const DefaultListWindow = 24 * time.Hour

// Service answers read queries over recorded alarms.
type Service struct {
	alarms alarms.Repository
	clock  Clock
}

// ServiceOption customizes the alarm service.
type ServiceOption func(*Service)

// WithServiceClock assigns a clock.
func WithServiceClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService constructs an alarm query service.
func NewService(repo alarms.Repository, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("alarms: nil repository")
	}
	s := &Service{alarms: repo, clock: systemClock{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListRecent returns alarms from the trailing window, newest first.
func (s *Service) ListRecent(ctx context.Context, window time.Duration) ([]alarms.Alarm, error) {
	if window <= 0 {
		window = DefaultListWindow
	}
	list, err := s.alarms.ListSince(ctx, s.clock.Now().Add(-window))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = make([]alarms.Alarm, 0)
	}
	return list, nil
}
