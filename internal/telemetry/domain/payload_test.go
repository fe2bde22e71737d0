package telemetry

import (
	"errors"
	"testing"
	"time"
)

func TestDecodePayload_Valid(t *testing.T) {
	raw := []byte(`{"timestamp":"2026-01-26T10:00:00+04:00","sensor1":{"temperature":21.5,"alarm":false},"sensor2":{"temperature":31.2,"alarm":true},"extra":1}`)
	payload, err := DecodePayload(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Sensors) != 2 {
		t.Fatalf("expected 2 sensors, got %d", len(payload.Sensors))
	}
	s1 := payload.Sensors[Sensor1]
	if s1.Malformed || s1.Alarm || s1.Temperature == nil || *s1.Temperature != 21.5 {
		t.Fatalf("unexpected sensor1 sample: %+v", s1)
	}
	s2 := payload.Sensors[Sensor2]
	if !s2.Alarm || s2.Temperature == nil || *s2.Temperature != 31.2 {
		t.Fatalf("unexpected sensor2 sample: %+v", s2)
	}
	if payload.ClientTimestamp != "2026-01-26T10:00:00+04:00" {
		t.Fatalf("unexpected client timestamp %q", payload.ClientTimestamp)
	}
}

func TestDecodePayload_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":  "",
		"spaces": "   ",
		"text":   "not json",
		"array":  `[1,2]`,
		"null":   `null`,
		"object": `{}`,
	}
	for name, body := range cases {
		if _, err := DecodePayload([]byte(body)); !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("%s: expected ErrMalformedPayload, got %v", name, err)
		}
	}
}

func TestDecodePayload_MissingSensor(t *testing.T) {
	_, err := DecodePayload([]byte(`{"sensor1":{"temperature":20,"alarm":false}}`))
	if !errors.Is(err, ErrMissingSensorData) {
		t.Fatalf("expected ErrMissingSensorData, got %v", err)
	}
}

func TestDecodePayload_TolerantSamples(t *testing.T) {
	raw := []byte(`{"sensor1":{"temperature":null,"alarm":true},"sensor2":"broken"}`)
	payload, err := DecodePayload(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	s1 := payload.Sensors[Sensor1]
	if s1.Malformed || !s1.Alarm || s1.Temperature != nil {
		t.Fatalf("expected alarm without temperature, got %+v", s1)
	}
	if !payload.Sensors[Sensor2].Malformed {
		t.Fatalf("expected sensor2 to be malformed")
	}

	payload, err = DecodePayload([]byte(`{"sensor1":{"temperature":20},"sensor2":{"temperature":"hot","alarm":true}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Sensors[Sensor1].Malformed {
		t.Fatalf("sample without alarm flag should be malformed")
	}
	if !payload.Sensors[Sensor2].Malformed {
		t.Fatalf("sample with non-numeric temperature should be malformed")
	}

	payload, err = DecodePayload([]byte(`{"sensor1":{"temperature":25,"alarm":"true"},"sensor2":{"temperature":26.5,"alarm":1}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for id, want := range map[SensorID]float64{Sensor1: 25, Sensor2: 26.5} {
		sample := payload.Sensors[id]
		if !sample.Malformed || sample.Alarm {
			t.Fatalf("%s: non-boolean alarm should be malformed without alarm, got %+v", id, sample)
		}
		if sample.Temperature == nil || *sample.Temperature != want {
			t.Fatalf("%s: expected temperature %v to survive, got %+v", id, want, sample.Temperature)
		}
	}
}

func TestFixedZone(t *testing.T) {
	zone := FixedZone(DefaultOffset)
	at := time.Date(2026, 1, 26, 6, 30, 0, 0, time.UTC).In(zone)
	if got := FormatTimestamp(at); got != "2026-01-26 10:30:00" {
		t.Fatalf("unexpected formatted time %s", got)
	}
	if _, offset := at.Zone(); offset != 4*3600 {
		t.Fatalf("unexpected offset %d", offset)
	}
	if FixedZone(0) != time.UTC {
		t.Fatalf("zero offset should be UTC")
	}
}
