package http

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	telemetry "temperature-monitor/internal/telemetry/domain"
)

const maxBodyBytes = 1 << 20

// Ingester accepts raw reading payloads.
type Ingester interface {
	Ingest(ctx context.Context, raw []byte) (telemetry.Reading, error)
}

// IngestHandler serves POST /api/temperature.
type IngestHandler struct {
	ingester Ingester
	logger   *log.Logger
}

// NewIngestHandler constructs an ingest handler.
func NewIngestHandler(ingester Ingester, logger *log.Logger) (*IngestHandler, error) {
	if ingester == nil {
		return nil, errors.New("temperature ingest: nil ingester")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &IngestHandler{ingester: ingester, logger: logger}, nil
}

// ServeHTTP ingests one reading.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Printf("temperature ingest: read body error: %v", err)
		writeError(w, http.StatusBadRequest, "No JSON data received")
		return
	}

	if _, err := h.ingester.Ingest(r.Context(), body); err != nil {
		switch {
		case errors.Is(err, telemetry.ErrMalformedPayload):
			h.logger.Printf("temperature ingest: rejected: %v", err)
			writeError(w, http.StatusBadRequest, "No JSON data received")
		case errors.Is(err, telemetry.ErrMissingSensorData):
			h.logger.Printf("temperature ingest: rejected: %v", err)
			writeError(w, http.StatusBadRequest, "Missing required sensor data")
		case errors.Is(err, telemetry.ErrStorageWriteFailed):
			writeError(w, http.StatusInternalServerError, "Database write failed")
		default:
			h.logger.Printf("temperature ingest: unexpected error: %v", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
}
