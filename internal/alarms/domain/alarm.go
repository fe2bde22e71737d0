package alarms

import (
	"context"
	"time"

	telemetry "temperature-monitor/internal/telemetry/domain"
)

// Alarm is one recorded breach for one sensor of one reading. Records are append-only.
type Alarm struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Sensor      telemetry.SensorID `json:"sensor"`
	Temperature *float64           `json:"temperature"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Validate checks required fields.
func (a Alarm) Validate() error {
	if a.ID == "" || a.Sensor == "" || a.Timestamp.IsZero() {
		return ErrInvalidAlarm
	}
	return nil
}

// Repository persists alarm records.
type Repository interface {
	Create(ctx context.Context, alarm Alarm) error
	// ListSince returns alarms with Timestamp >= since, newest first.
	ListSince(ctx context.Context, since time.Time) ([]Alarm, error)
}
