package light

import "time"

// Light is the mutable state mirror of a controllable light.
type Light struct {
	// ID is the store-assigned identifier, stable for the row's lifetime.
	ID int64 `json:"id"`

	// Name is the operator-facing label.
	Name string `json:"name"`

	// State reports whether the light is on.
	State bool `json:"state"`

	// Brightness is the dim level 0-100, default 100.
	Brightness int `json:"brightness"`

	// Color is an optional colour string (hex or named).
	Color *string `json:"color,omitempty"`

	// LastCommandTime is set whenever the row is written.
	LastCommandTime time.Time `json:"last_command_time"`
}
