package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/applight/applight-core/internal/automation"
)

// createScheduledEventRequest is the body for POST /api/v1/scheduled-events.
type createScheduledEventRequest struct {
	Time   *string `json:"time"`
	Mode   *string `json:"mode"`
	Strips []int64 `json:"strips"`
}

// handleListScheduledEvents returns all scheduled events.
func (s *Server) handleListScheduledEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := s.events.List(ctx)
	if err != nil {
		s.logger.Error("failed to list scheduled events", "error", err)
		writeInternalError(w, "failed to list scheduled events")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scheduled_events": events,
		"count":            len(events),
	})
}

// handleGetScheduledEvent returns a single scheduled event by id.
func (s *Server) handleGetScheduledEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, automation.ErrEventNotFound) {
			writeNotFound(w, "scheduled event not found")
			return
		}
		s.logger.Error("failed to get scheduled event", "event_id", id, "error", err)
		writeInternalError(w, "failed to get scheduled event")
		return
	}

	writeJSON(w, http.StatusOK, e)
}

// handleCreateScheduledEvent registers a new scheduled event.
func (s *Server) handleCreateScheduledEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createScheduledEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	e := &automation.ScheduledEvent{
		Mode:   req.Mode,
		Strips: req.Strips,
	}
	if req.Time != nil && *req.Time != "" {
		t, err := automation.ParseTimeOfDay(*req.Time)
		if err != nil {
			writeBadRequest(w, "time must be HH:MM or HH:MM:SS")
			return
		}
		e.Time = &t
	}

	if err := s.events.Create(ctx, e); err != nil {
		s.logger.Error("failed to create scheduled event", "error", err)
		writeInternalError(w, "failed to create scheduled event")
		return
	}

	writeJSON(w, http.StatusCreated, e)
}

// handleDeleteScheduledEvent removes a scheduled event.
func (s *Server) handleDeleteScheduledEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, automation.ErrEventNotFound) {
			writeNotFound(w, "scheduled event not found")
			return
		}
		s.logger.Error("failed to delete scheduled event", "event_id", id, "error", err)
		writeInternalError(w, "failed to delete scheduled event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
