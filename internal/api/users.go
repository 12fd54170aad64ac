package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/applight/applight-core/internal/auth"
)

// createUserRequest is the body for POST /api/v1/users.
type createUserRequest struct {
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
	Preferences *string `json:"preferences"`
}

// handleListUsers returns all users. Password hashes are never serialised.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		writeInternalError(w, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// handleGetUser returns a single user by id.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("failed to get user", "user_id", id, "error", err)
		writeInternalError(w, "failed to get user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleCreateUser registers a new user with a hashed password.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Password == "" {
		writeBadRequest(w, "password is required")
		return
	}
	if req.Role != "" && !auth.IsValidRole(auth.Role(req.Role)) {
		writeBadRequest(w, "role must be user or admin")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hashing failed", "error", err)
		writeInternalError(w, "failed to create user")
		return
	}

	user := &auth.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         auth.Role(req.Role),
		Preferences:  req.Preferences,
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidUsername):
			writeBadRequest(w, "username must be 1-64 characters: letters, digits, dot, dash, underscore")
			return
		case errors.Is(err, auth.ErrUsernameExists):
			writeConflict(w, "username already exists")
			return
		default:
			s.logger.Error("failed to create user", "error", err)
			writeInternalError(w, "failed to create user")
			return
		}
	}

	writeJSON(w, http.StatusCreated, user)
}
