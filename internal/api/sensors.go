package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/applight/applight-core/internal/sensor"
)

// createSensorRequest is the body for POST /api/v1/sensors.
type createSensorRequest struct {
	SensorType       string   `json:"sensor_type"`
	Model            *string  `json:"model"`
	Location         *string  `json:"location"`
	CalibrationValue *float64 `json:"calibration_value"`
}

// updateSensorRequest is the body for PATCH /api/v1/sensors/{id}.
// Nil fields are left unchanged.
type updateSensorRequest struct {
	SensorType       *string  `json:"sensor_type"`
	Model            *string  `json:"model"`
	Location         *string  `json:"location"`
	LastValue        *float64 `json:"last_value"`
	CalibrationValue *float64 `json:"calibration_value"`
}

// handleListSensors returns all sensors.
func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sensors, err := s.sensors.List(ctx)
	if err != nil {
		s.logger.Error("failed to list sensors", "error", err)
		writeInternalError(w, "failed to list sensors")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sensors": sensors,
		"count":   len(sensors),
	})
}

// handleGetSensor returns a single sensor by id.
func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	sns, err := s.sensors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sensor.ErrNotFound) {
			writeNotFound(w, "sensor not found")
			return
		}
		s.logger.Error("failed to get sensor", "sensor_id", id, "error", err)
		writeInternalError(w, "failed to get sensor")
		return
	}

	writeJSON(w, http.StatusOK, sns)
}

// handleCreateSensor registers a new sensor.
func (s *Server) handleCreateSensor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createSensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	sns := &sensor.Sensor{
		SensorType: req.SensorType,
		Model:      req.Model,
		Location:   req.Location,
	}
	if req.CalibrationValue != nil {
		sns.CalibrationValue = *req.CalibrationValue
	}

	if err := s.sensors.Create(ctx, sns); err != nil {
		if errors.Is(err, sensor.ErrInvalidType) {
			writeBadRequest(w, "sensor_type is required")
			return
		}
		s.logger.Error("failed to create sensor", "error", err)
		writeInternalError(w, "failed to create sensor")
		return
	}

	writeJSON(w, http.StatusCreated, sns)
}

// handleUpdateSensor applies a partial update to a sensor.
func (s *Server) handleUpdateSensor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req updateSensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	sns, err := s.sensors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sensor.ErrNotFound) {
			writeNotFound(w, "sensor not found")
			return
		}
		s.logger.Error("failed to get sensor", "sensor_id", id, "error", err)
		writeInternalError(w, "failed to update sensor")
		return
	}

	if req.SensorType != nil {
		sns.SensorType = *req.SensorType
	}
	if req.Model != nil {
		sns.Model = req.Model
	}
	if req.Location != nil {
		sns.Location = req.Location
	}
	if req.LastValue != nil {
		sns.LastValue = req.LastValue
	}
	if req.CalibrationValue != nil {
		sns.CalibrationValue = *req.CalibrationValue
	}

	if err := s.sensors.Update(ctx, sns); err != nil {
		s.logger.Error("failed to update sensor", "sensor_id", id, "error", err)
		writeInternalError(w, "failed to update sensor")
		return
	}

	writeJSON(w, http.StatusOK, sns)
}

// idParam parses the {id} URL parameter, writing a 400 response on failure.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}
