package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS temperature_readings (
	id        TEXT PRIMARY KEY,
	server_ts TIMESTAMPTZ NOT NULL,
	client_ts TEXT,
	sensors   JSONB NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_temperature_readings_server_ts
	ON temperature_readings (server_ts DESC)`,
	`CREATE TABLE IF NOT EXISTS alarms (
	id          TEXT PRIMARY KEY,
	ts          TIMESTAMPTZ NOT NULL,
	sensor      TEXT NOT NULL,
	temperature DOUBLE PRECISION,
	created_at  TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_alarms_ts ON alarms (ts DESC)`,
	`CREATE TABLE IF NOT EXISTS telegram_subscribers (
	chat_id       BIGINT PRIMARY KEY,
	display_name  TEXT NOT NULL DEFAULT '',
	is_active     BOOLEAN NOT NULL DEFAULT FALSE,
	subscribed_at TIMESTAMPTZ NOT NULL,
	last_updated  TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_telegram_subscribers_active
	ON telegram_subscribers (chat_id) WHERE is_active`,
}

// EnsureSchema creates the service tables and indexes when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("schema: nil db")
	}
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema: statement %d: %w", i+1, err)
		}
	}
	return nil
}
