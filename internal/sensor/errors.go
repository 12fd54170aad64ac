package sensor

import "errors"

var (
	// ErrNotFound is returned when a sensor ID does not exist.
	ErrNotFound = errors.New("sensor: not found")

	// ErrInvalidType is returned when a sensor type is empty.
	ErrInvalidType = errors.New("sensor: sensor type cannot be empty")
)
