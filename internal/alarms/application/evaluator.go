package application

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	alarms "temperature-monitor/internal/alarms/domain"
	"temperature-monitor/internal/alarms/notify"
	"temperature-monitor/internal/observability/metrics"
	telemetry "temperature-monitor/internal/telemetry/domain"
)

// DefaultSendTimeout bounds each individual notification send.
const DefaultSendTimeout = 5 * time.Second

// SubscriberLister returns chat ids that currently receive alerts.
type SubscriberLister interface {
	ListActive(ctx context.Context) ([]int64, error)
}

// AlarmListener receives every alarm after it is recorded.
type AlarmListener interface {
	Publish(ctx context.Context, alarm alarms.Alarm)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Evaluator inspects accepted readings, notifies subscribers and records alarms.
type Evaluator struct {
	alarms      alarms.Repository
	subscribers SubscriberLister
	channel     notify.Channel
	template    *notify.Template
	listener    AlarmListener
	clock       Clock
	sendTimeout time.Duration
	newID       func() string
	logger      *log.Logger
}

// EvaluatorOption customizes the evaluator.
type EvaluatorOption func(*Evaluator)

// WithTemplate sets the alert text template.
func WithTemplate(tpl *notify.Template) EvaluatorOption {
	return func(e *Evaluator) {
		if tpl != nil {
			e.template = tpl
		}
	}
}

// WithListener assigns a listener for recorded alarms.
func WithListener(listener AlarmListener) EvaluatorOption {
	return func(e *Evaluator) {
		e.listener = listener
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) EvaluatorOption {
	return func(e *Evaluator) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithSendTimeout overrides the per-send timeout.
func WithSendTimeout(timeout time.Duration) EvaluatorOption {
	return func(e *Evaluator) {
		if timeout > 0 {
			e.sendTimeout = timeout
		}
	}
}

// WithIDGenerator overrides alarm id generation.
func WithIDGenerator(fn func() string) EvaluatorOption {
	return func(e *Evaluator) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEvaluator constructs an alarm evaluator.
func NewEvaluator(repo alarms.Repository, subscribers SubscriberLister, channel notify.Channel, opts ...EvaluatorOption) (*Evaluator, error) {
	if repo == nil {
		return nil, errors.New("alarm evaluator: nil repository")
	}
	if subscribers == nil {
		return nil, errors.New("alarm evaluator: nil subscriber lister")
	}
	if channel == nil {
		return nil, errors.New("alarm evaluator: nil channel")
	}
	tpl, err := notify.NewTemplate("")
	if err != nil {
		return nil, err
	}
	e := &Evaluator{
		alarms:      repo,
		subscribers: subscribers,
		channel:     channel,
		template:    tpl,
		clock:       systemClock{},
		sendTimeout: DefaultSendTimeout,
		newID:       uuid.NewString,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate handles every required sensor of an accepted reading. It never fails:
// notification and persistence problems are logged and counted.
func (e *Evaluator) Evaluate(ctx context.Context, reading telemetry.Reading) {
	for _, id := range telemetry.RequiredSensors {
		sample, ok := reading.Sample(id)
		if !ok {
			e.logger.Printf("alarm evaluator: reading %s missing %s", reading.ID, id)
			continue
		}
		if sample.Malformed {
			e.logger.Printf("alarm evaluator: reading %s has malformed %s sample", reading.ID, id)
			continue
		}
		if !sample.Alarm {
			continue
		}
		e.raise(ctx, reading, id, sample)
	}
}

func (e *Evaluator) raise(ctx context.Context, reading telemetry.Reading, id telemetry.SensorID, sample telemetry.SensorSample) {
	content, err := e.template.Render(notify.TemplateData{
		Sensor:      string(id),
		Temperature: notify.FormatTemperature(sample.Temperature),
		Time:        telemetry.FormatTimestamp(reading.ServerTimestamp),
	})
	if err != nil {
		e.logger.Printf("alarm evaluator: render %s error: %v", id, err)
	} else {
		e.fanOut(ctx, e.recipients(ctx), content)
	}

	alarm := alarms.Alarm{
		ID:          e.newID(),
		Timestamp:   reading.ServerTimestamp,
		Sensor:      id,
		Temperature: sample.Temperature,
		CreatedAt:   e.clock.Now().UTC(),
	}
	metrics.IncAlarm(string(id))
	if err := e.alarms.Create(ctx, alarm); err != nil {
		e.logger.Printf("alarm evaluator: save alarm for %s error: %v", id, err)
		metrics.IncAlarmWriteError()
		return
	}
	if e.listener != nil {
		e.listener.Publish(ctx, alarm)
	}
}

func (e *Evaluator) recipients(ctx context.Context) []int64 {
	ids, err := e.subscribers.ListActive(ctx)
	if err != nil {
		e.logger.Printf("alarm evaluator: list subscribers error: %v", err)
		return nil
	}
	return ids
}

// fanOut sends content to every recipient in parallel and waits for all sends.
func (e *Evaluator) fanOut(ctx context.Context, recipients []int64, content string) {
	var wg sync.WaitGroup
	for _, chatID := range recipients {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			e.send(ctx, chatID, content)
		}(chatID)
	}
	wg.Wait()
}

func (e *Evaluator) send(ctx context.Context, chatID int64, content string) {
	sendCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()
	start := time.Now()
	err := e.channel.Send(sendCtx, chatID, content)
	elapsed := time.Since(start)
	switch {
	case err == nil:
		metrics.ObserveNotification(metrics.ResultSuccess, elapsed)
	case errors.Is(err, context.DeadlineExceeded):
		e.logger.Printf("alarm evaluator: notify chat %d timed out: %v", chatID, err)
		metrics.ObserveNotification(metrics.ResultTimeout, elapsed)
	default:
		e.logger.Printf("alarm evaluator: notify chat %d error: %v", chatID, err)
		metrics.ObserveNotification(metrics.ResultError, elapsed)
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
