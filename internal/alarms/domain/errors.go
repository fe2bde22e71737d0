package alarms

import "errors"

// ErrInvalidAlarm indicates a record missing its id, sensor or timestamp.
var ErrInvalidAlarm = errors.New("alarm: invalid record")
