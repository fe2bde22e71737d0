package telemetry

import "errors"

var (
	// ErrMalformedPayload indicates the body is not a JSON object.
	ErrMalformedPayload = errors.New("telemetry: malformed payload")
	// ErrMissingSensorData indicates a required sensor key is absent.
	ErrMissingSensorData = errors.New("telemetry: missing required sensor data")
	// ErrStorageWriteFailed wraps a failed reading insert.
	ErrStorageWriteFailed = errors.New("telemetry: storage write failed")
	// ErrStorageReadFailed wraps a failed history query.
	ErrStorageReadFailed = errors.New("telemetry: storage read failed")
)
