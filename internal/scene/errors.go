package scene

import "errors"

var (
	// ErrNotFound is returned when a scenario ID does not exist.
	ErrNotFound = errors.New("scene: not found")

	// ErrInvalidName is returned when a scenario name is empty.
	ErrInvalidName = errors.New("scene: name cannot be empty")
)
