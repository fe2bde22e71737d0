package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	alarms "temperature-monitor/internal/alarms/domain"
	telemetry "temperature-monitor/internal/telemetry/domain"
)

// AlarmLister lists recent alarms, newest first.
type AlarmLister interface {
	ListRecent(ctx context.Context, window time.Duration) ([]alarms.Alarm, error)
}

type alarmView struct {
	ID          string   `json:"id"`
	Timestamp   string   `json:"timestamp"`
	Sensor      string   `json:"sensor"`
	Temperature *float64 `json:"temperature"`
	CreatedAt   string   `json:"created_at"`
}

func toView(alarm alarms.Alarm, zone *time.Location) alarmView {
	return alarmView{
		ID:          alarm.ID,
		Timestamp:   telemetry.FormatTimestamp(alarm.Timestamp.In(zone)),
		Sensor:      string(alarm.Sensor),
		Temperature: alarm.Temperature,
		CreatedAt:   alarm.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Handler serves GET /api/alarms.
type Handler struct {
	lister AlarmLister
	window time.Duration
	zone   *time.Location
	logger *log.Logger
}

// NewHandler constructs a handler. Alarm timestamps are rendered in zone.
func NewHandler(lister AlarmLister, window time.Duration, zone *time.Location, logger *log.Logger) (*Handler, error) {
	if lister == nil {
		return nil, errors.New("alarms handler: nil lister")
	}
	if zone == nil {
		zone = telemetry.FixedZone(telemetry.DefaultOffset)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{lister: lister, window: window, zone: zone, logger: logger}, nil
}

// ServeHTTP returns recent alarms. An optional window query overrides the default, e.g. ?window=6h.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	window := h.window
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "window must be a positive duration", http.StatusBadRequest)
			return
		}
		window = parsed
	}
	list, err := h.lister.ListRecent(r.Context(), window)
	if err != nil {
		h.logger.Printf("alarms handler: list error: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := make([]alarmView, 0, len(list))
	for _, alarm := range list {
		views = append(views, toView(alarm, h.zone))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(views)
}
