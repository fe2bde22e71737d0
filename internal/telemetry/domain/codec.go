package telemetry

import (
	"encoding/json"
	"fmt"
)

type storedSample struct {
	Temperature *float64 `json:"temperature"`
	Alarm       bool     `json:"alarm"`
	Malformed   bool     `json:"malformed,omitempty"`
}

// EncodeSensors renders samples in the storage JSON shape.
func EncodeSensors(sensors map[SensorID]SensorSample) ([]byte, error) {
	out := make(map[string]storedSample, len(sensors))
	for id, sample := range sensors {
		out[string(id)] = storedSample{
			Temperature: sample.Temperature,
			Alarm:       sample.Alarm,
			Malformed:   sample.Malformed,
		}
	}
	return json.Marshal(out)
}

// DecodeSensors parses samples written by EncodeSensors.
func DecodeSensors(data []byte) (map[SensorID]SensorSample, error) {
	var in map[string]storedSample
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("telemetry: decode stored sensors: %w", err)
	}
	out := make(map[SensorID]SensorSample, len(in))
	for id, sample := range in {
		out[SensorID(id)] = SensorSample{
			Temperature: sample.Temperature,
			Alarm:       sample.Alarm,
			Malformed:   sample.Malformed,
		}
	}
	return out, nil
}
