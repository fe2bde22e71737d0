package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	subscribers "temperature-monitor/internal/subscribers/domain"
)

const defaultSubscribersTable = "telegram_subscribers"

// SubscriberRepository is a Postgres subscriber store.
type SubscriberRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*SubscriberRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(repo *SubscriberRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewSubscriberRepository constructs a repository.
func NewSubscriberRepository(db *sql.DB, opts ...RepositoryOption) *SubscriberRepository {
	repo := &SubscriberRepository{db: db, table: defaultSubscribersTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Get loads a subscriber by chat id.
func (r *SubscriberRepository) Get(ctx context.Context, chatID int64) (*subscribers.Subscriber, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("subscriber repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`
SELECT chat_id, display_name, is_active, subscribed_at, last_updated
FROM %s
WHERE chat_id = $1`, r.table), chatID)
	var sub subscribers.Subscriber
	if err := row.Scan(&sub.ChatID, &sub.DisplayName, &sub.IsActive, &sub.SubscribedAt, &sub.LastUpdated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	sub.SubscribedAt = sub.SubscribedAt.UTC()
	sub.LastUpdated = sub.LastUpdated.UTC()
	return &sub, nil
}

// Upsert creates or replaces the record keyed by chat_id.
func (r *SubscriberRepository) Upsert(ctx context.Context, sub subscribers.Subscriber) error {
	if r == nil || r.db == nil {
		return errors.New("subscriber repo: nil db")
	}
	if sub.ChatID == 0 {
		return subscribers.ErrInvalidChatID
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO %s (chat_id, display_name, is_active, subscribed_at, last_updated)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (chat_id) DO UPDATE SET
	display_name = EXCLUDED.display_name,
	is_active = EXCLUDED.is_active,
	subscribed_at = EXCLUDED.subscribed_at,
	last_updated = EXCLUDED.last_updated`, r.table),
		sub.ChatID, sub.DisplayName, sub.IsActive, sub.SubscribedAt, sub.LastUpdated)
	return err
}

// Deactivate marks an existing record inactive.
func (r *SubscriberRepository) Deactivate(ctx context.Context, chatID int64, at time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("subscriber repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`
UPDATE %s SET is_active = FALSE, last_updated = $2
WHERE chat_id = $1`, r.table), chatID, at)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return subscribers.ErrStateConflict
	}
	return nil
}

// ListActive returns active chat ids.
func (r *SubscriberRepository) ListActive(ctx context.Context) ([]int64, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("subscriber repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT chat_id FROM %s WHERE is_active = TRUE ORDER BY chat_id ASC`, r.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
