package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/applight/applight-core/internal/automation"
)

// createAutomationRequest is the body for POST /api/v1/automations.
// ScheduledTime is an "HH:MM" or "HH:MM:SS" wall-clock string.
type createAutomationRequest struct {
	Trigger       *string `json:"trigger"`
	Action        *string `json:"action"`
	Active        *bool   `json:"active"`
	ScheduledTime *string `json:"scheduled_time"`
}

// updateAutomationRequest is the body for PATCH /api/v1/automations/{id}.
// Nil fields are left unchanged.
type updateAutomationRequest struct {
	Trigger       *string `json:"trigger"`
	Action        *string `json:"action"`
	Active        *bool   `json:"active"`
	ScheduledTime *string `json:"scheduled_time"`
}

// handleListAutomations returns all automations.
func (s *Server) handleListAutomations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	automations, err := s.automations.List(ctx)
	if err != nil {
		s.logger.Error("failed to list automations", "error", err)
		writeInternalError(w, "failed to list automations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"automations": automations,
		"count":       len(automations),
	})
}

// handleGetAutomation returns a single automation by id.
func (s *Server) handleGetAutomation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	a, err := s.automations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, automation.ErrNotFound) {
			writeNotFound(w, "automation not found")
			return
		}
		s.logger.Error("failed to get automation", "automation_id", id, "error", err)
		writeInternalError(w, "failed to get automation")
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// handleCreateAutomation registers a new automation.
func (s *Server) handleCreateAutomation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createAutomationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	a := &automation.Automation{
		Trigger: req.Trigger,
		Action:  req.Action,
		Active:  true,
	}
	if req.Active != nil {
		a.Active = *req.Active
	}
	if req.ScheduledTime != nil && *req.ScheduledTime != "" {
		t, err := automation.ParseTimeOfDay(*req.ScheduledTime)
		if err != nil {
			writeBadRequest(w, "scheduled_time must be HH:MM or HH:MM:SS")
			return
		}
		a.ScheduledTime = &t
	}

	if err := s.automations.Create(ctx, a); err != nil {
		s.logger.Error("failed to create automation", "error", err)
		writeInternalError(w, "failed to create automation")
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

// handleUpdateAutomation applies a partial update to an automation.
// Sending "scheduled_time": "" clears the schedule.
func (s *Server) handleUpdateAutomation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req updateAutomationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	a, err := s.automations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, automation.ErrNotFound) {
			writeNotFound(w, "automation not found")
			return
		}
		s.logger.Error("failed to get automation", "automation_id", id, "error", err)
		writeInternalError(w, "failed to update automation")
		return
	}

	if req.Trigger != nil {
		a.Trigger = req.Trigger
	}
	if req.Action != nil {
		a.Action = req.Action
	}
	if req.Active != nil {
		a.Active = *req.Active
	}
	if req.ScheduledTime != nil {
		if *req.ScheduledTime == "" {
			a.ScheduledTime = nil
		} else {
			t, err := automation.ParseTimeOfDay(*req.ScheduledTime)
			if err != nil {
				writeBadRequest(w, "scheduled_time must be HH:MM or HH:MM:SS")
				return
			}
			a.ScheduledTime = &t
		}
	}

	if err := s.automations.Update(ctx, a); err != nil {
		s.logger.Error("failed to update automation", "automation_id", id, "error", err)
		writeInternalError(w, "failed to update automation")
		return
	}

	writeJSON(w, http.StatusOK, a)
}
