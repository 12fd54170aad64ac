package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/applight/applight-core/internal/infrastructure/mqtt"
	"github.com/applight/applight-core/internal/sensor"
)

// sensorIngestRequest is the body for POST /api/sensors/update.
// Pointers distinguish absent fields from zero values.
type sensorIngestRequest struct {
	ID        *int64   `json:"id"`
	LastValue *float64 `json:"last_value"`
}

// motionIngestRequest is the body for POST /api/motion/update.
type motionIngestRequest struct {
	MotionDetected *bool  `json:"motion_detected"`
	Timestamp      string `json:"timestamp"`
}

// commandIngestRequest is the body for POST /api/command.
type commandIngestRequest struct {
	Command *string `json:"command"`
}

// ledIngestRequest is the body for POST /api/led/update.
// State is any JSON value; firmware variants send strings, booleans,
// and brightness objects. RawMessage keeps an explicit null distinct
// from an absent key: a present null still counts as a state report.
type ledIngestRequest struct {
	State     json.RawMessage `json:"state"`
	Timestamp string          `json:"timestamp"`
}

// handleSensorIngest records a sensor reading pushed by a device node.
//
// Responds 200 on success, 400 for a malformed body, 404 when the sensor
// id is unknown.
func (s *Server) handleSensorIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sensorIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIngestError(w, http.StatusBadRequest, "No JSON payload received")
		return
	}
	if req.LastValue == nil {
		writeIngestError(w, http.StatusBadRequest, "Invalid sensor data")
		return
	}
	if req.ID == nil {
		writeIngestError(w, http.StatusNotFound, "Sensor not found")
		return
	}

	if err := s.sensors.UpdateValue(ctx, *req.ID, *req.LastValue); err != nil {
		if errors.Is(err, sensor.ErrNotFound) {
			writeIngestError(w, http.StatusNotFound, "Sensor not found")
			return
		}
		s.logger.Error("sensor ingest failed", "sensor_id", *req.ID, "error", err)
		writeInternalError(w, "failed to update sensor")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Sensor updated successfully",
	})
}

// handleSensorFetch returns a sensor by the id bound from the URL path.
func (s *Server) handleSensorFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeIngestError(w, http.StatusNotFound, "Sensor not found.")
		return
	}

	sns, err := s.sensors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sensor.ErrNotFound) {
			writeIngestError(w, http.StatusNotFound, "Sensor not found.")
			return
		}
		s.logger.Error("sensor fetch failed", "sensor_id", id, "error", err)
		writeInternalError(w, "failed to fetch sensor")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"sensor": sns,
	})
}

// handleMotionIngest acknowledges a motion event from a device node.
// Motion events are transient: they are echoed back and relayed to the
// device bus, never persisted.
func (s *Server) handleMotionIngest(w http.ResponseWriter, r *http.Request) {
	var req motionIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MotionDetected == nil {
		writeIngestError(w, http.StatusBadRequest, "Invalid data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"message":   "Motion event recorded",
		"motion":    *req.MotionDetected,
		"timestamp": req.Timestamp,
	})
}

// handleCommandIngest acknowledges a command from a BLE/ESP32 node and
// relays it to the device bus when connected.
func (s *Server) handleCommandIngest(w http.ResponseWriter, r *http.Request) {
	var req commandIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Command == nil {
		writeIngestError(w, http.StatusBadRequest, "Invalid command data")
		return
	}

	s.publishToBus(mqtt.Topics{}.Commands(), map[string]any{"command": *req.Command}, false)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "success",
		"message":          "Command processed",
		"command_received": *req.Command,
	})
}

// handleLEDIngest acknowledges an LED state report and retains the latest
// state on the device bus so strips that reconnect pick it up.
func (s *Server) handleLEDIngest(w http.ResponseWriter, r *http.Request) {
	var req ledIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.State == nil {
		writeIngestError(w, http.StatusBadRequest, "Invalid data for LED update")
		return
	}

	var state any
	if err := json.Unmarshal(req.State, &state); err != nil {
		writeIngestError(w, http.StatusBadRequest, "Invalid data for LED update")
		return
	}

	s.publishToBus(mqtt.Topics{}.LEDState(), map[string]any{
		"state":     state,
		"timestamp": req.Timestamp,
	}, true)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"message":   "LED status updated",
		"state":     state,
		"timestamp": req.Timestamp,
	})
}

// publishToBus best-effort publishes a JSON payload to the device bus.
// Ingestion never fails because the bus is down; the HTTP response is the
// contract with the firmware.
func (s *Server) publishToBus(topic string, payload any, retained bool) {
	if s.mqtt == nil || !s.mqtt.IsConnected() {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.mqtt.Publish(topic, data, 1, retained); err != nil {
		s.logger.Warn("device bus publish failed", "topic", topic, "error", err)
	}
}
