package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	telemetry "temperature-monitor/internal/telemetry/domain"
)

const (
	defaultTopic          = "sensors/temperature"
	defaultIngestTimeout  = 5 * time.Second
	defaultConnectTimeout = 10 * time.Second
	disconnectQuiesceMs   = 250
)

// Ingester accepts raw reading payloads.
type Ingester interface {
	Ingest(ctx context.Context, raw []byte) (telemetry.Reading, error)
}

// Config describes the broker connection.
type Config struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
}

// Option configures the subscriber.
type Option func(*Subscriber)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Subscriber) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIngestTimeout bounds each ingest triggered by a message.
func WithIngestTimeout(timeout time.Duration) Option {
	return func(s *Subscriber) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// Subscriber feeds MQTT messages into the same ingest pipeline as the HTTP endpoint.
type Subscriber struct {
	cfg      Config
	ingester Ingester
	timeout  time.Duration
	logger   *log.Logger
	client   paho.Client
}

// NewSubscriber constructs an MQTT ingest subscriber.
func NewSubscriber(cfg Config, ingester Ingester, opts ...Option) (*Subscriber, error) {
	if ingester == nil {
		return nil, errors.New("mqtt: nil ingester")
	}
	if cfg.Broker == "" {
		return nil, errors.New("mqtt: broker is required")
	}
	if cfg.Topic == "" {
		cfg.Topic = defaultTopic
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "temperature-monitor"
	}
	s := &Subscriber{
		cfg:      cfg,
		ingester: ingester,
		timeout:  defaultIngestTimeout,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run connects, subscribes and blocks until ctx is done.
func (s *Subscriber) Run(ctx context.Context) error {
	opts := paho.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	opts.SetClientID(s.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(defaultConnectTimeout)
	// Subscribe on every (re)connect.
	opts.SetOnConnectHandler(func(c paho.Client) {
		token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, s.HandleMessage)
		if token.Wait() && token.Error() != nil {
			s.logger.Printf("mqtt: subscribe %s error: %v", s.cfg.Topic, token.Error())
			return
		}
		s.logger.Printf("mqtt: subscribed to %s", s.cfg.Topic)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		s.logger.Printf("mqtt: connection lost: %v", err)
	})

	s.client = paho.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt: connect %s: %w", s.cfg.Broker, token.Error())
	}
	<-ctx.Done()
	s.client.Disconnect(disconnectQuiesceMs)
	return nil
}

// HandleMessage ingests one message payload.
func (s *Subscriber) HandleMessage(_ paho.Client, msg paho.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.ingester.Ingest(ctx, msg.Payload()); err != nil {
		s.logger.Printf("mqtt: ingest from %s error: %v", msg.Topic(), err)
	}
}
