package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	telemetry "temperature-monitor/internal/telemetry/domain"
)

// DefaultHistoryWindow is the trailing window served to charts.
const DefaultHistoryWindow = 24 * time.Hour

// History is a chart-friendly projection; all slices have equal length.
type History struct {
	Timestamps []string   `json:"timestamps"`
	Sensor1    []*float64 `json:"sensor1"`
	Sensor2    []*float64 `json:"sensor2"`
}

// Len returns the number of aligned points.
func (h History) Len() int {
	return len(h.Timestamps)
}

// HistoryService reads the trailing window of readings.
type HistoryService struct {
	readings telemetry.ReadingRepository
	clock    Clock
	zone     *time.Location
}

// HistoryOption customizes the history service.
type HistoryOption func(*HistoryService)

// WithHistoryClock assigns a clock.
func WithHistoryClock(clock Clock) HistoryOption {
	return func(s *HistoryService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithHistoryOffset must match the offset used at ingest.
func WithHistoryOffset(offset time.Duration) HistoryOption {
	return func(s *HistoryService) {
		s.zone = telemetry.FixedZone(offset)
	}
}

// NewHistoryService constructs a history service.
func NewHistoryService(readings telemetry.ReadingRepository, opts ...HistoryOption) (*HistoryService, error) {
	if readings == nil {
		return nil, errors.New("telemetry history: nil reading repository")
	}
	s := &HistoryService{
		readings: readings,
		clock:    systemClock{},
		zone:     telemetry.FixedZone(telemetry.DefaultOffset),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// History returns readings with ServerTimestamp >= now - window in ascending order.
// A non-positive window falls back to DefaultHistoryWindow.
func (s *HistoryService) History(ctx context.Context, window time.Duration) (History, error) {
	if s == nil {
		return History{}, errors.New("telemetry history: nil service")
	}
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	since := s.clock.Now().In(s.zone).Add(-window)

	readings, err := s.readings.ListSince(ctx, since)
	if err != nil {
		return History{}, fmt.Errorf("%w: %v", telemetry.ErrStorageReadFailed, err)
	}
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].ServerTimestamp.Before(readings[j].ServerTimestamp)
	})

	history := History{
		Timestamps: make([]string, 0, len(readings)),
		Sensor1:    make([]*float64, 0, len(readings)),
		Sensor2:    make([]*float64, 0, len(readings)),
	}
	for _, reading := range readings {
		history.Timestamps = append(history.Timestamps, telemetry.FormatTimestamp(reading.ServerTimestamp.In(s.zone)))
		history.Sensor1 = append(history.Sensor1, temperatureOf(reading, telemetry.Sensor1))
		history.Sensor2 = append(history.Sensor2, temperatureOf(reading, telemetry.Sensor2))
	}
	return history, nil
}

func temperatureOf(reading telemetry.Reading, id telemetry.SensorID) *float64 {
	sample, ok := reading.Sample(id)
	if !ok || sample.Temperature == nil {
		return nil
	}
	v := *sample.Temperature
	return &v
}
