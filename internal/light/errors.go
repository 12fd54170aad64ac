package light

import "errors"

var (
	// ErrNotFound is returned when a light ID does not exist.
	ErrNotFound = errors.New("light: not found")

	// ErrInvalidName is returned when a light name is empty.
	ErrInvalidName = errors.New("light: name cannot be empty")
)
