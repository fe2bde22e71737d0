package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	alarms "temperature-monitor/internal/alarms/domain"
	telemetry "temperature-monitor/internal/telemetry/domain"
)

const defaultAlarmsTable = "alarms"

// AlarmRepository is a Postgres repository for alarm records.
type AlarmRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*AlarmRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(repo *AlarmRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewAlarmRepository constructs a repository.
func NewAlarmRepository(db *sql.DB, opts ...RepositoryOption) *AlarmRepository {
	repo := &AlarmRepository{db: db, table: defaultAlarmsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Create inserts an alarm record.
func (r *AlarmRepository) Create(ctx context.Context, alarm alarms.Alarm) error {
	if r == nil || r.db == nil {
		return errors.New("alarm repo: nil db")
	}
	if err := alarm.Validate(); err != nil {
		return err
	}
	if alarm.CreatedAt.IsZero() {
		alarm.CreatedAt = time.Now().UTC()
	}
	temperature := sql.NullFloat64{}
	if alarm.Temperature != nil {
		temperature = sql.NullFloat64{Float64: *alarm.Temperature, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO %s (id, ts, sensor, temperature, created_at)
VALUES ($1, $2, $3, $4, $5)`, r.table),
		alarm.ID,
		alarm.Timestamp,
		string(alarm.Sensor),
		temperature,
		alarm.CreatedAt,
	)
	return err
}

// ListSince returns alarms with ts >= since, newest first.
func (r *AlarmRepository) ListSince(ctx context.Context, since time.Time) ([]alarms.Alarm, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alarm repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT id, ts, sensor, temperature, created_at
FROM %s
WHERE ts >= $1
ORDER BY ts DESC`, r.table), since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]alarms.Alarm, 0)
	for rows.Next() {
		var (
			alarm       alarms.Alarm
			sensor      string
			temperature sql.NullFloat64
		)
		if err := rows.Scan(&alarm.ID, &alarm.Timestamp, &sensor, &temperature, &alarm.CreatedAt); err != nil {
			return nil, err
		}
		alarm.Sensor = telemetry.SensorID(sensor)
		if temperature.Valid {
			v := temperature.Float64
			alarm.Temperature = &v
		}
		alarm.CreatedAt = alarm.CreatedAt.UTC()
		result = append(result, alarm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
