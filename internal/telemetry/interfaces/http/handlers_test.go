package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"temperature-monitor/internal/telemetry/application"
	telemetry "temperature-monitor/internal/telemetry/domain"
	"temperature-monitor/internal/telemetry/infrastructure/memory"
)

var quietLogger = log.New(io.Discard, "", 0)

type stubIngester struct {
	err  error
	body []byte
}

func (s *stubIngester) Ingest(_ context.Context, raw []byte) (telemetry.Reading, error) {
	s.body = raw
	return telemetry.Reading{}, s.err
}

func decodeStatus(t *testing.T, body io.Reader) statusResponse {
	t.Helper()
	var resp statusResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestIngestHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    int
		status  string
		message string
	}{
		{name: "success", code: http.StatusOK, status: "success"},
		{name: "malformed", err: fmt.Errorf("%w: eof", telemetry.ErrMalformedPayload), code: http.StatusBadRequest, status: "error", message: "No JSON data received"},
		{name: "missing", err: fmt.Errorf("%w: sensor2", telemetry.ErrMissingSensorData), code: http.StatusBadRequest, status: "error", message: "Missing required sensor data"},
		{name: "storage", err: fmt.Errorf("%w: down", telemetry.ErrStorageWriteFailed), code: http.StatusInternalServerError, status: "error", message: "Database write failed"},
		{name: "other", err: errors.New("boom"), code: http.StatusInternalServerError, status: "error", message: "boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ingester := &stubIngester{err: tc.err}
			handler, err := NewIngestHandler(ingester, quietLogger)
			if err != nil {
				t.Fatalf("new handler: %v", err)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/temperature", strings.NewReader(`{"sensor1":{}}`))
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, resp.Code)
			}
			body := decodeStatus(t, resp.Body)
			if body.Status != tc.status || body.Message != tc.message {
				t.Fatalf("unexpected body %+v", body)
			}
			if string(ingester.body) != `{"sensor1":{}}` {
				t.Fatalf("handler must pass the raw body through, got %q", ingester.body)
			}
		})
	}
}

func TestIngestHandlerMethodNotAllowed(t *testing.T) {
	handler, _ := NewIngestHandler(&stubIngester{}, quietLogger)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/temperature", nil))
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestIngestHandlerEndToEnd(t *testing.T) {
	repo := memory.NewReadingRepository()
	svc, err := application.NewIngestService(repo, application.WithLogger(quietLogger))
	if err != nil {
		t.Fatalf("new ingest service: %v", err)
	}
	handler, _ := NewIngestHandler(svc, quietLogger)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/temperature", strings.NewReader(`{"sensor2":{"temperature":20,"alarm":false}}`)))
	if resp.Code != http.StatusBadRequest || repo.Len() != 0 {
		t.Fatalf("expected 400 and no write, got %d with %d readings", resp.Code, repo.Len())
	}

	resp = httptest.NewRecorder()
	body := `{"sensor1":{"temperature":20,"alarm":false},"sensor2":{"temperature":21,"alarm":false}}`
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/temperature", strings.NewReader(body)))
	if resp.Code != http.StatusOK || repo.Len() != 1 {
		t.Fatalf("expected 200 and one write, got %d with %d readings", resp.Code, repo.Len())
	}
}

type stubHistory struct {
	history application.History
	err     error
	window  time.Duration
}

func (s *stubHistory) History(_ context.Context, window time.Duration) (application.History, error) {
	s.window = window
	return s.history, s.err
}

func TestHistoryHandlerDefaultsWindowAndShape(t *testing.T) {
	v := 21.5
	reader := &stubHistory{history: application.History{
		Timestamps: []string{"2026-01-26 10:00:00"},
		Sensor1:    []*float64{&v},
		Sensor2:    []*float64{nil},
	}}
	handler, err := NewHistoryHandler(reader, 0, quietLogger)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/temperature/history", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if reader.window != 24*time.Hour {
		t.Fatalf("expected 24h window, got %s", reader.window)
	}
	got := strings.TrimSpace(resp.Body.String())
	want := `{"timestamps":["2026-01-26 10:00:00"],"sensor1":[21.5],"sensor2":[null]}`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestHistoryHandlerStorageError(t *testing.T) {
	handler, _ := NewHistoryHandler(&stubHistory{err: telemetry.ErrStorageReadFailed}, 0, quietLogger)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/temperature/history", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if body := decodeStatus(t, resp.Body); body.Status != "error" {
		t.Fatalf("expected error status, got %+v", body)
	}
}

func TestLatestHandler(t *testing.T) {
	store := memory.NewLatestStore()
	handler, err := NewLatestHandler(store, quietLogger)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/temperature/latest", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any reading, got %d", resp.Code)
	}

	v := 30.5
	zone := telemetry.FixedZone(telemetry.DefaultOffset)
	_ = store.Put(context.Background(), telemetry.Reading{
		ID:              "r1",
		ServerTimestamp: time.Date(2026, 1, 26, 6, 0, 0, 0, time.UTC).In(zone),
		Sensors:         map[telemetry.SensorID]telemetry.SensorSample{telemetry.Sensor1: {Temperature: &v, Alarm: true}},
	})
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/temperature/latest", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ServerTimestamp != "2026-01-26 10:00:00" || !body.Sensors["sensor1"].Alarm {
		t.Fatalf("unexpected latest body %+v", body)
	}
}

func TestHistoryExportHandler(t *testing.T) {
	v := 19.25
	reader := &stubHistory{history: application.History{
		Timestamps: []string{"2026-01-26 10:00:00", "2026-01-26 10:00:05"},
		Sensor1:    []*float64{&v, nil},
		Sensor2:    []*float64{nil, &v},
	}}
	handler, err := NewHistoryExportHandler(reader, 0, quietLogger)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/temperature/history.xlsx", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	f, err := excelize.OpenReader(bytes.NewReader(resp.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	cell, err := f.GetCellValue("history", "A3")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if cell != "2026-01-26 10:00:05" {
		t.Fatalf("unexpected A3 %q", cell)
	}
	if empty, _ := f.GetCellValue("history", "B3"); empty != "" {
		t.Fatalf("missing temperature must leave the cell empty, got %q", empty)
	}
}
