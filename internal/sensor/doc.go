// Package sensor provides the sensor entity and its persistence layer.
//
// A Sensor row mirrors the latest known reading of a physical device:
// embedded devices push values over HTTP (or MQTT when the bus is
// enabled) and the row is overwritten in place. There is no reading
// history; consumers that need trends must sample the snapshot stream.
//
// # Key Types
//
//   - Sensor: the entity (type, model, location, last value, calibration)
//   - Snapshot: the compact {id, last_value, updated_at} wire form pushed
//     to real-time subscribers
//   - Repository: persistence interface with a SQLite implementation
//
// # Usage
//
//	repo := sensor.NewSQLiteRepository(db)
//
//	// Device push (hot path)
//	if err := repo.UpdateValue(ctx, 3, 23.5); err != nil {
//	    if errors.Is(err, sensor.ErrNotFound) { ... }
//	}
//
//	// Snapshot for broadcast
//	sensors, _ := repo.List(ctx)
package sensor
