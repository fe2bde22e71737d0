package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"temperature-monitor/internal/observability/metrics"
	telemetry "temperature-monitor/internal/telemetry/domain"
)

// AlarmEvaluator inspects an accepted reading for breaches.
type AlarmEvaluator interface {
	Evaluate(ctx context.Context, reading telemetry.Reading)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// IngestService validates, timestamps and stores readings, then hands them to alarm evaluation.
type IngestService struct {
	readings  telemetry.ReadingRepository
	latest    telemetry.LatestStore
	evaluator AlarmEvaluator
	clock     Clock
	zone      *time.Location
	newID     func() string
	logger    *log.Logger
}

// IngestOption customizes the ingest service.
type IngestOption func(*IngestService)

// WithEvaluator assigns the alarm evaluator.
func WithEvaluator(evaluator AlarmEvaluator) IngestOption {
	return func(s *IngestService) {
		s.evaluator = evaluator
	}
}

// WithLatestStore assigns the latest-reading cache.
func WithLatestStore(latest telemetry.LatestStore) IngestOption {
	return func(s *IngestService) {
		s.latest = latest
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) IngestOption {
	return func(s *IngestService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithOffset sets the fixed UTC offset applied to server timestamps.
func WithOffset(offset time.Duration) IngestOption {
	return func(s *IngestService) {
		s.zone = telemetry.FixedZone(offset)
	}
}

// WithIDGenerator overrides reading id generation.
func WithIDGenerator(fn func() string) IngestOption {
	return func(s *IngestService) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger assigns a logger.
func WithLogger(logger *log.Logger) IngestOption {
	return func(s *IngestService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewIngestService constructs an ingest service.
func NewIngestService(readings telemetry.ReadingRepository, opts ...IngestOption) (*IngestService, error) {
	if readings == nil {
		return nil, errors.New("telemetry ingest: nil reading repository")
	}
	s := &IngestService{
		readings: readings,
		clock:    systemClock{},
		zone:     telemetry.FixedZone(telemetry.DefaultOffset),
		newID:    uuid.NewString,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ingest accepts a raw payload. Only decode and insert failures are returned;
// anything after a successful insert is contained.
func (s *IngestService) Ingest(ctx context.Context, raw []byte) (telemetry.Reading, error) {
	if s == nil {
		return telemetry.Reading{}, errors.New("telemetry ingest: nil service")
	}
	start := time.Now()

	payload, err := telemetry.DecodePayload(raw)
	if err != nil {
		metrics.IncIngestError(rejectionReason(err))
		metrics.ObserveIngest(metrics.ResultError, time.Since(start))
		return telemetry.Reading{}, err
	}

	reading := telemetry.Reading{
		ID:              s.newID(),
		Sensors:         payload.Sensors,
		ClientTimestamp: payload.ClientTimestamp,
		ServerTimestamp: s.clock.Now().In(s.zone),
	}

	if err := s.readings.Insert(ctx, reading.Clone()); err != nil {
		s.logger.Printf("telemetry ingest: insert error: %v", err)
		metrics.IncIngestError("storage")
		metrics.ObserveIngest(metrics.ResultError, time.Since(start))
		return telemetry.Reading{}, fmt.Errorf("%w: %v", telemetry.ErrStorageWriteFailed, err)
	}

	if s.latest != nil {
		if err := s.latest.Put(ctx, reading.Clone()); err != nil {
			s.logger.Printf("telemetry ingest: latest cache error: %v", err)
		}
	}

	if s.evaluator != nil {
		// The reading is stored; a caller hanging up must not cut the fan-out short.
		s.evaluator.Evaluate(context.WithoutCancel(ctx), reading.Clone())
	}

	metrics.ObserveIngest(metrics.ResultSuccess, time.Since(start))
	return reading, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, telemetry.ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, telemetry.ErrMissingSensorData):
		return "missing_sensor_data"
	default:
		return "unknown"
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
