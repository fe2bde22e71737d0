package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload is a decoded, validated sensor submission.
type Payload struct {
	Sensors         map[SensorID]SensorSample
	ClientTimestamp string
}

// DecodePayload turns an untrusted request body into a Payload.
// Sensors outside RequiredSensors are dropped.
func DecodePayload(raw []byte) (Payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Payload{}, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(fields) == 0 {
		return Payload{}, fmt.Errorf("%w: no fields", ErrMalformedPayload)
	}

	payload := Payload{Sensors: make(map[SensorID]SensorSample, len(RequiredSensors))}
	for _, id := range RequiredSensors {
		value, ok := fields[string(id)]
		if !ok {
			return Payload{}, fmt.Errorf("%w: %s", ErrMissingSensorData, id)
		}
		payload.Sensors[id] = decodeSample(value)
	}
	payload.ClientTimestamp = decodeClientTimestamp(fields["timestamp"])
	return payload, nil
}

type rawSample struct {
	Temperature json.RawMessage `json:"temperature"`
	Alarm       json.RawMessage `json:"alarm"`
}

// decodeSample keeps a numeric temperature even when the alarm flag is unusable.
func decodeSample(value json.RawMessage) SensorSample {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return SensorSample{Malformed: true}
	}
	var sample rawSample
	if err := json.Unmarshal(trimmed, &sample); err != nil {
		return SensorSample{Malformed: true}
	}

	var out SensorSample
	var temperature *float64
	if err := decodeOptional(sample.Temperature, &temperature); err != nil {
		out.Malformed = true
	} else {
		out.Temperature = temperature
	}
	var alarm *bool
	if err := decodeOptional(sample.Alarm, &alarm); err != nil || alarm == nil {
		out.Malformed = true
	} else {
		out.Alarm = *alarm
	}
	if out.Malformed {
		out.Alarm = false
	}
	return out
}

func decodeOptional(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func decodeClientTimestamp(value json.RawMessage) string {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		return text
	}
	return string(trimmed)
}
