package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/applight/applight-core/internal/light"
)

// createLightRequest is the body for POST /api/v1/lights.
type createLightRequest struct {
	Name       string  `json:"name"`
	State      bool    `json:"state"`
	Brightness *int    `json:"brightness"`
	Color      *string `json:"color"`
}

// updateLightRequest is the body for PATCH /api/v1/lights/{id}.
// Nil fields are left unchanged.
type updateLightRequest struct {
	Name       *string `json:"name"`
	State      *bool   `json:"state"`
	Brightness *int    `json:"brightness"`
	Color      *string `json:"color"`
}

// handleListLights returns all lights.
func (s *Server) handleListLights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lights, err := s.lights.List(ctx)
	if err != nil {
		s.logger.Error("failed to list lights", "error", err)
		writeInternalError(w, "failed to list lights")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"lights": lights,
		"count":  len(lights),
	})
}

// handleGetLight returns a single light by id.
func (s *Server) handleGetLight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	lt, err := s.lights.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, light.ErrNotFound) {
			writeNotFound(w, "light not found")
			return
		}
		s.logger.Error("failed to get light", "light_id", id, "error", err)
		writeInternalError(w, "failed to get light")
		return
	}

	writeJSON(w, http.StatusOK, lt)
}

// handleCreateLight registers a new light.
func (s *Server) handleCreateLight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createLightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	lt := &light.Light{
		Name:  req.Name,
		State: req.State,
		Color: req.Color,
	}
	if req.Brightness != nil {
		lt.Brightness = *req.Brightness
	}

	if err := s.lights.Create(ctx, lt); err != nil {
		if errors.Is(err, light.ErrInvalidName) {
			writeBadRequest(w, "name is required")
			return
		}
		s.logger.Error("failed to create light", "error", err)
		writeInternalError(w, "failed to create light")
		return
	}

	writeJSON(w, http.StatusCreated, lt)
}

// handleUpdateLight applies a partial update to a light and stamps its
// last command time.
func (s *Server) handleUpdateLight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req updateLightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	lt, err := s.lights.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, light.ErrNotFound) {
			writeNotFound(w, "light not found")
			return
		}
		s.logger.Error("failed to get light", "light_id", id, "error", err)
		writeInternalError(w, "failed to update light")
		return
	}

	if req.Name != nil {
		lt.Name = *req.Name
	}
	if req.State != nil {
		lt.State = *req.State
	}
	if req.Brightness != nil {
		lt.Brightness = *req.Brightness
	}
	if req.Color != nil {
		lt.Color = req.Color
	}

	if err := s.lights.Update(ctx, lt); err != nil {
		s.logger.Error("failed to update light", "light_id", id, "error", err)
		writeInternalError(w, "failed to update light")
		return
	}

	writeJSON(w, http.StatusOK, lt)
}
