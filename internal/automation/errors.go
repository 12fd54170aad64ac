package automation

import "errors"

var (
	// ErrNotFound is returned when an automation ID does not exist.
	ErrNotFound = errors.New("automation: not found")

	// ErrEventNotFound is returned when a scheduled event ID does not exist.
	ErrEventNotFound = errors.New("automation: scheduled event not found")

	// ErrInvalidTime is returned when a time of day cannot be parsed.
	ErrInvalidTime = errors.New("automation: invalid time of day")

	// ErrInvalidStrips is returned when a strips list cannot be parsed.
	ErrInvalidStrips = errors.New("automation: invalid strips list")
)
