package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"temperature-monitor/internal/telemetry/application"
	telemetry "temperature-monitor/internal/telemetry/domain"
)

// HistoryReader produces the trailing history projection.
type HistoryReader interface {
	History(ctx context.Context, window time.Duration) (application.History, error)
}

// HistoryHandler serves GET /api/temperature/history.
type HistoryHandler struct {
	reader HistoryReader
	window time.Duration
	logger *log.Logger
}

// NewHistoryHandler constructs a history handler; window <= 0 means the default 24h.
func NewHistoryHandler(reader HistoryReader, window time.Duration, logger *log.Logger) (*HistoryHandler, error) {
	if reader == nil {
		return nil, errors.New("temperature history: nil reader")
	}
	if window <= 0 {
		window = application.DefaultHistoryWindow
	}
	if logger == nil {
		logger = log.Default()
	}
	return &HistoryHandler{reader: reader, window: window, logger: logger}, nil
}

// ServeHTTP returns the fixed-window history.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	history, err := h.reader.History(r.Context(), h.window)
	if err != nil {
		h.logger.Printf("temperature history: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// LatestHandler serves GET /api/temperature/latest from the latest-reading cache.
type LatestHandler struct {
	store  telemetry.LatestStore
	logger *log.Logger
}

// NewLatestHandler constructs a latest handler.
func NewLatestHandler(store telemetry.LatestStore, logger *log.Logger) (*LatestHandler, error) {
	if store == nil {
		return nil, errors.New("temperature latest: nil store")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &LatestHandler{store: store, logger: logger}, nil
}

type latestSample struct {
	Temperature *float64 `json:"temperature"`
	Alarm       bool     `json:"alarm"`
}

type latestResponse struct {
	ServerTimestamp string                  `json:"server_timestamp"`
	Sensors         map[string]latestSample `json:"sensors"`
}

// ServeHTTP returns the last accepted reading.
func (h *LatestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	reading, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Printf("temperature latest: %v", err)
		writeError(w, http.StatusInternalServerError, "latest reading unavailable")
		return
	}
	if reading == nil {
		writeError(w, http.StatusNotFound, "no readings yet")
		return
	}
	resp := latestResponse{
		ServerTimestamp: telemetry.FormatTimestamp(reading.ServerTimestamp),
		Sensors:         make(map[string]latestSample, len(reading.Sensors)),
	}
	for id, sample := range reading.Sensors {
		resp.Sensors[string(id)] = latestSample{Temperature: sample.Temperature, Alarm: sample.Alarm}
	}
	writeJSON(w, http.StatusOK, resp)
}
