package subscribers

import (
	"context"
	"time"
)

// Subscriber is a Telegram chat that may receive alarm messages.
// Records are never deleted; IsActive toggles instead.
type Subscriber struct {
	ChatID       int64     `json:"chat_id"`
	DisplayName  string    `json:"display_name"`
	IsActive     bool      `json:"is_active"`
	SubscribedAt time.Time `json:"subscribed_at"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Outcome is the result of a subscription command.
type Outcome string

const (
	OutcomeSubscribed        Outcome = "subscribed"
	OutcomeAlreadySubscribed Outcome = "already_subscribed"
	OutcomeUnsubscribed      Outcome = "unsubscribed"
	OutcomeNotSubscribed     Outcome = "not_subscribed"
)

// Repository persists subscribers keyed by chat id.
type Repository interface {
	// Get returns nil, nil for an unknown chat id.
	Get(ctx context.Context, chatID int64) (*Subscriber, error)
	// Upsert creates or replaces the record for sub.ChatID.
	Upsert(ctx context.Context, sub Subscriber) error
	// Deactivate marks an existing record inactive. It returns ErrStateConflict
	// when no record matched.
	Deactivate(ctx context.Context, chatID int64, at time.Time) error
	ListActive(ctx context.Context) ([]int64, error)
}
