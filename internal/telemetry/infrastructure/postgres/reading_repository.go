package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	telemetry "temperature-monitor/internal/telemetry/domain"
)

const defaultReadingsTable = "temperature_readings"

// ReadingRepository is a Postgres implementation of the reading log.
type ReadingRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*ReadingRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewReadingRepository constructs a repository with default table name.
func NewReadingRepository(db *sql.DB, opts ...RepositoryOption) *ReadingRepository {
	repo := &ReadingRepository{db: db, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Insert appends a reading.
func (r *ReadingRepository) Insert(ctx context.Context, reading telemetry.Reading) error {
	if r == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}
	if reading.ID == "" || reading.ServerTimestamp.IsZero() {
		return errors.New("reading repo: invalid reading")
	}
	sensors, err := telemetry.EncodeSensors(reading.Sensors)
	if err != nil {
		return err
	}
	clientTS := sql.NullString{}
	if reading.ClientTimestamp != "" {
		clientTS = sql.NullString{String: reading.ClientTimestamp, Valid: true}
	}
	_, err = r.db.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO %s (id, server_ts, client_ts, sensors)
VALUES ($1, $2, $3, $4)`, r.table),
		reading.ID,
		reading.ServerTimestamp,
		clientTS,
		string(sensors),
	)
	return err
}

// ListSince returns readings with server_ts >= since, oldest first.
func (r *ReadingRepository) ListSince(ctx context.Context, since time.Time) ([]telemetry.Reading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT id, server_ts, client_ts, sensors
FROM %s
WHERE server_ts >= $1
ORDER BY server_ts ASC`, r.table), since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]telemetry.Reading, 0)
	for rows.Next() {
		var (
			reading  telemetry.Reading
			clientTS sql.NullString
			sensors  []byte
		)
		if err := rows.Scan(&reading.ID, &reading.ServerTimestamp, &clientTS, &sensors); err != nil {
			return nil, err
		}
		decoded, err := telemetry.DecodeSensors(sensors)
		if err != nil {
			return nil, err
		}
		reading.Sensors = decoded
		if clientTS.Valid {
			reading.ClientTimestamp = clientTS.String
		}
		result = append(result, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
