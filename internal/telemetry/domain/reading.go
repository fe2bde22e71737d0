package telemetry

import (
	"context"
	"time"
)

// SensorID identifies one probe on the sensor client.
type SensorID string

const (
	Sensor1 SensorID = "sensor1"
	Sensor2 SensorID = "sensor2"
)

// RequiredSensors is the fixed set every reading must carry, in display order.
var RequiredSensors = []SensorID{Sensor1, Sensor2}

// SensorSample is one probe value as reported upstream.
// Temperature is nil when the client failed to read the hardware.
type SensorSample struct {
	Temperature *float64 `json:"temperature"`
	Alarm       bool     `json:"alarm"`
	// Malformed marks a sample that was present but not a usable object.
	Malformed bool `json:"-"`
}

// Reading is one accepted ingestion event.
type Reading struct {
	ID              string
	Sensors         map[SensorID]SensorSample
	ClientTimestamp string
	ServerTimestamp time.Time
}

// Sample returns the sample for a sensor and whether the key was present.
func (r Reading) Sample(id SensorID) (SensorSample, bool) {
	if r.Sensors == nil {
		return SensorSample{}, false
	}
	sample, ok := r.Sensors[id]
	return sample, ok
}

// Clone returns a copy that shares no maps or pointers with r.
func (r Reading) Clone() Reading {
	out := r
	if r.Sensors != nil {
		out.Sensors = make(map[SensorID]SensorSample, len(r.Sensors))
		for id, sample := range r.Sensors {
			if sample.Temperature != nil {
				v := *sample.Temperature
				sample.Temperature = &v
			}
			out.Sensors[id] = sample
		}
	}
	return out
}

// ReadingRepository persists readings.
type ReadingRepository interface {
	Insert(ctx context.Context, reading Reading) error
	ListSince(ctx context.Context, since time.Time) ([]Reading, error)
}

// LatestStore keeps the most recently accepted reading for live views.
// Get returns nil, nil when nothing has been stored yet.
type LatestStore interface {
	Put(ctx context.Context, reading Reading) error
	Get(ctx context.Context) (*Reading, error)
}
