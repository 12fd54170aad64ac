// Package light provides the light entity and its persistence layer.
//
// A Light row mirrors the desired state of a controllable light: on/off,
// brightness, and an optional colour. The operator surface and the REST
// API write it; last_command_time is stamped on every write.
package light
