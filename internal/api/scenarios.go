package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/applight/applight-core/internal/scene"
)

// createScenarioRequest is the body for POST /api/v1/scenarios.
type createScenarioRequest struct {
	Name     string  `json:"name"`
	Settings *string `json:"settings"`
}

// handleListScenarios returns all scenarios.
func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scenarios, err := s.scenarios.List(ctx)
	if err != nil {
		s.logger.Error("failed to list scenarios", "error", err)
		writeInternalError(w, "failed to list scenarios")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scenarios": scenarios,
		"count":     len(scenarios),
	})
}

// handleGetScenario returns a single scenario by id.
func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	sc, err := s.scenarios.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, scene.ErrNotFound) {
			writeNotFound(w, "scenario not found")
			return
		}
		s.logger.Error("failed to get scenario", "scenario_id", id, "error", err)
		writeInternalError(w, "failed to get scenario")
		return
	}

	writeJSON(w, http.StatusOK, sc)
}

// handleCreateScenario registers a new scenario.
func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	sc := &scene.Scenario{
		Name:     req.Name,
		Settings: req.Settings,
	}

	if err := s.scenarios.Create(ctx, sc); err != nil {
		if errors.Is(err, scene.ErrInvalidName) {
			writeBadRequest(w, "name is required")
			return
		}
		s.logger.Error("failed to create scenario", "error", err)
		writeInternalError(w, "failed to create scenario")
		return
	}

	writeJSON(w, http.StatusCreated, sc)
}
