package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "thermo_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	ingestRequests *prometheus.CounterVec
	ingestErrors   *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec

	alarmsTotal         *prometheus.CounterVec
	alarmWriteErrors    prometheus.Counter
	notificationsTotal  *prometheus.CounterVec
	notificationLatency prometheus.Histogram

	subscriberCommands *prometheus.CounterVec
)

// Init registers metrics; db may be nil when running on in-memory stores.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		ingestRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_requests_total",
				Help: "Total reading ingest requests by result",
			},
			[]string{"result"},
		)
		ingestErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_errors_total",
				Help: "Total rejected or failed ingests by reason",
			},
			[]string{"reason"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Ingest latency in seconds, alarm evaluation included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		alarmsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarms_total",
				Help: "Total breaches seen by sensor",
			},
			[]string{"sensor"},
		)
		alarmWriteErrors = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarm_write_errors_total",
				Help: "Alarm records that could not be persisted",
			},
		)
		notificationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifications_total",
				Help: "Subscriber notification attempts by result",
			},
			[]string{"result"},
		)
		notificationLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "notification_latency_seconds",
				Help:    "Single notification send latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)

		subscriberCommands = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "subscriber_commands_total",
				Help: "Bot subscription commands by outcome",
			},
			[]string{"outcome"},
		)

		prometheus.MustRegister(
			ingestRequests,
			ingestErrors,
			ingestLatency,
			alarmsTotal,
			alarmWriteErrors,
			notificationsTotal,
			notificationLatency,
			subscriberCommands,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveIngest records ingest duration and result.
func ObserveIngest(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if ingestRequests != nil {
		ingestRequests.WithLabelValues(result).Inc()
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncIngestError increments ingest error counter.
func IncIngestError(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if ingestErrors != nil {
		ingestErrors.WithLabelValues(reason).Inc()
	}
}

// IncAlarm counts one breach for a sensor.
func IncAlarm(sensor string) {
	if sensor == "" {
		sensor = "unknown"
	}
	if alarmsTotal != nil {
		alarmsTotal.WithLabelValues(sensor).Inc()
	}
}

// IncAlarmWriteError counts a failed alarm insert.
func IncAlarmWriteError() {
	if alarmWriteErrors != nil {
		alarmWriteErrors.Inc()
	}
}

// ObserveNotification records one send attempt.
func ObserveNotification(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if notificationsTotal != nil {
		notificationsTotal.WithLabelValues(result).Inc()
	}
	if notificationLatency != nil {
		notificationLatency.Observe(duration.Seconds())
	}
}

// IncSubscriberCommand counts a handled bot command.
func IncSubscriberCommand(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	if subscriberCommands != nil {
		subscriberCommands.WithLabelValues(outcome).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
	ResultTimeout = "timeout"
)
