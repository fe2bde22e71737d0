package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	alarmhttp "temperature-monitor/internal/alarms/interfaces/http"
	telemetry "temperature-monitor/internal/telemetry/domain"
	telemetryhttp "temperature-monitor/internal/telemetry/interfaces/http"
)

type routerDeps struct {
	ingester telemetryhttp.Ingester
	history  telemetryhttp.HistoryReader
	latest   telemetry.LatestStore
	alarms   alarmhttp.AlarmLister
	broker   *alarmhttp.SSEBroker
	window   time.Duration
	zone     *time.Location
}

func newRouter(deps routerDeps, logger *log.Logger) (http.Handler, error) {
	ingestHandler, err := telemetryhttp.NewIngestHandler(deps.ingester, logger)
	if err != nil {
		return nil, err
	}
	historyHandler, err := telemetryhttp.NewHistoryHandler(deps.history, deps.window, logger)
	if err != nil {
		return nil, err
	}
	exportHandler, err := telemetryhttp.NewHistoryExportHandler(deps.history, deps.window, logger)
	if err != nil {
		return nil, err
	}
	latestHandler, err := telemetryhttp.NewLatestHandler(deps.latest, logger)
	if err != nil {
		return nil, err
	}
	alarmHandler, err := alarmhttp.NewHandler(deps.alarms, deps.window, deps.zone, logger)
	if err != nil {
		return nil, err
	}
	reportHandler, err := alarmhttp.NewReportHandler(deps.alarms, deps.window, deps.zone, logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler { return loggingMiddleware(next, logger) })

	r.Method(http.MethodPost, "/api/temperature", ingestHandler)
	r.Method(http.MethodGet, "/api/temperature/history", historyHandler)
	r.Method(http.MethodGet, "/api/temperature/history.xlsx", exportHandler)
	r.Method(http.MethodGet, "/api/temperature/latest", latestHandler)
	r.Method(http.MethodGet, "/api/alarms", alarmHandler)
	r.Method(http.MethodGet, "/api/alarms/stream", alarmhttp.NewStreamHandler(deps.broker))
	r.Method(http.MethodGet, "/api/alarms/report.pdf", reportHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	return r, nil
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush keeps the SSE stream working behind the middleware.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
