package sensor

import "time"

// Sensor is the last-known-value mirror of a physical sensor.
// Prior readings are overwritten, not appended; there is no history.
type Sensor struct {
	// ID is the store-assigned identifier, stable for the row's lifetime.
	ID int64 `json:"id"`

	// SensorType describes what the sensor measures (temperature, humidity, motion).
	SensorType string `json:"sensor_type"`

	// Model is the hardware model string, if known.
	Model *string `json:"model,omitempty"`

	// Location is a free-text placement description (e.g. "living room").
	Location *string `json:"location,omitempty"`

	// LastValue is the most recent reading pushed by the device.
	// Nil until the first push arrives.
	LastValue *float64 `json:"last_value"`

	// CalibrationValue is a multiplier applied by consumers, default 1.0.
	// The core stores it; it does not apply it.
	CalibrationValue float64 `json:"calibration_value"`

	// UpdatedAt is set whenever LastValue or the row metadata changes.
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is the compact wire form pushed to real-time subscribers.
type Snapshot struct {
	ID        int64     `json:"id"`
	LastValue *float64  `json:"last_value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns the compact wire form of the sensor.
func (s *Sensor) Snapshot() Snapshot {
	return Snapshot{
		ID:        s.ID,
		LastValue: s.LastValue,
		UpdatedAt: s.UpdatedAt,
	}
}
