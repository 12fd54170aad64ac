// Package scene provides the scenario entity and its persistence layer.
// Scenarios are named presets with opaque settings text; rows are created
// by the operator surface and read back for listing, never updated or
// deleted.
package scene
