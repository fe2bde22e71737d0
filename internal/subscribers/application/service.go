package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"temperature-monitor/internal/observability/metrics"
	subscribers "temperature-monitor/internal/subscribers/domain"
)

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Service drives the subscription state machine.
type Service struct {
	repo   subscribers.Repository
	clock  Clock
	logger *log.Logger
}

// Option customizes the service.
type Option func(*Service)

// WithClock assigns a clock.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs a subscriber service.
func NewService(repo subscribers.Repository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("subscribers: nil repository")
	}
	s := &Service{repo: repo, clock: systemClock{}, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Subscribe activates chatID. An already active subscriber is left untouched.
func (s *Service) Subscribe(ctx context.Context, chatID int64, displayName string) (subscribers.Outcome, error) {
	if chatID == 0 {
		return "", subscribers.ErrInvalidChatID
	}
	existing, err := s.repo.Get(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("subscribers: get %d: %w", chatID, err)
	}
	if existing != nil && existing.IsActive {
		metrics.IncSubscriberCommand(string(subscribers.OutcomeAlreadySubscribed))
		return subscribers.OutcomeAlreadySubscribed, nil
	}
	now := s.clock.Now().UTC()
	if err := s.repo.Upsert(ctx, subscribers.Subscriber{
		ChatID:       chatID,
		DisplayName:  displayName,
		IsActive:     true,
		SubscribedAt: now,
		LastUpdated:  now,
	}); err != nil {
		return "", fmt.Errorf("subscribers: upsert %d: %w", chatID, err)
	}
	s.logger.Printf("subscribers: new subscriber %d (%s)", chatID, displayName)
	metrics.IncSubscriberCommand(string(subscribers.OutcomeSubscribed))
	return subscribers.OutcomeSubscribed, nil
}

// Unsubscribe deactivates chatID. Unknown or inactive subscribers are left untouched.
func (s *Service) Unsubscribe(ctx context.Context, chatID int64, displayName string) (subscribers.Outcome, error) {
	if chatID == 0 {
		return "", subscribers.ErrInvalidChatID
	}
	existing, err := s.repo.Get(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("subscribers: get %d: %w", chatID, err)
	}
	if existing == nil || !existing.IsActive {
		metrics.IncSubscriberCommand(string(subscribers.OutcomeNotSubscribed))
		return subscribers.OutcomeNotSubscribed, nil
	}
	if err := s.repo.Deactivate(ctx, chatID, s.clock.Now().UTC()); err != nil {
		return "", fmt.Errorf("subscribers: deactivate %d: %w", chatID, err)
	}
	s.logger.Printf("subscribers: deactivated %d (%s)", chatID, displayName)
	metrics.IncSubscriberCommand(string(subscribers.OutcomeUnsubscribed))
	return subscribers.OutcomeUnsubscribed, nil
}

// ListActive returns chat ids of active subscribers.
func (s *Service) ListActive(ctx context.Context) ([]int64, error) {
	ids, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribers: list active: %w", err)
	}
	return ids, nil
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
