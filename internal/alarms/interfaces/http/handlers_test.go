package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	alarms "temperature-monitor/internal/alarms/domain"
	telemetry "temperature-monitor/internal/telemetry/domain"
)

var quietLogger = log.New(io.Discard, "", 0)

type stubLister struct {
	list   []alarms.Alarm
	err    error
	window time.Duration
}

func (s *stubLister) ListRecent(_ context.Context, window time.Duration) ([]alarms.Alarm, error) {
	s.window = window
	return s.list, s.err
}

func sampleAlarm() alarms.Alarm {
	v := 88.5
	return alarms.Alarm{
		ID:          "a1",
		Timestamp:   time.Date(2026, 1, 26, 6, 0, 0, 0, time.UTC),
		Sensor:      telemetry.Sensor1,
		Temperature: &v,
		CreatedAt:   time.Date(2026, 1, 26, 6, 0, 1, 0, time.UTC),
	}
}

func TestListHandler(t *testing.T) {
	lister := &stubLister{list: []alarms.Alarm{sampleAlarm()}}
	handler, err := NewHandler(lister, 0, nil, quietLogger)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/alarms?window=6h", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if lister.window != 6*time.Hour {
		t.Fatalf("expected window override, got %s", lister.window)
	}
	var views []alarmView
	if err := json.NewDecoder(resp.Body).Decode(&views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 1 || views[0].Timestamp != "2026-01-26 10:00:00" || views[0].Sensor != "sensor1" {
		t.Fatalf("unexpected views %+v", views)
	}
}

func TestListHandlerErrors(t *testing.T) {
	handler, _ := NewHandler(&stubLister{}, 0, nil, quietLogger)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/alarms?window=soon", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	handler, _ = NewHandler(&stubLister{err: errors.New("db down")}, 0, nil, quietLogger)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/alarms", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}

	handler, _ = NewHandler(&stubLister{}, 0, nil, quietLogger)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/alarms", nil))
	if strings.TrimSpace(resp.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", resp.Body.String())
	}
}

func TestStreamDeliversPublishedAlarm(t *testing.T) {
	broker := NewSSEBroker(nil)
	server := httptest.NewServer(NewStreamHandler(broker))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("get stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() []string {
		var lines []string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			line = strings.TrimRight(line, "\n")
			if line == "" {
				return lines
			}
			lines = append(lines, line)
		}
	}
	if ready := readEvent(); ready[0] != "event: ready" {
		t.Fatalf("expected ready event, got %v", ready)
	}

	broker.Publish(context.Background(), sampleAlarm())
	event := readEvent()
	if len(event) != 2 || event[0] != "event: alarm" || !strings.Contains(event[1], `"sensor":"sensor1"`) {
		t.Fatalf("unexpected alarm event %v", event)
	}
}

func TestBrokerDropsForSlowClients(t *testing.T) {
	broker := NewSSEBroker(nil)
	ch := broker.Subscribe()
	for i := 0; i < 32; i++ {
		broker.Publish(context.Background(), sampleAlarm())
	}
	if len(ch) != cap(ch) {
		t.Fatalf("expected buffer to fill without blocking, got %d", len(ch))
	}
	broker.Unsubscribe(ch)
	if broker.Clients() != 0 {
		t.Fatalf("expected no clients after unsubscribe")
	}
	broker.Publish(context.Background(), sampleAlarm())
}

func TestReportHandler(t *testing.T) {
	handler, err := NewReportHandler(&stubLister{list: []alarms.Alarm{sampleAlarm(), {ID: "a2", Sensor: telemetry.Sensor2, Timestamp: time.Now()}}}, 0, nil, quietLogger)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/alarms/report.pdf", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.HasPrefix(resp.Body.String(), "%PDF") {
		t.Fatalf("expected pdf body")
	}
}
