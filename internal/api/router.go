package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Device ingestion routes. These predate the versioned API and keep the
	// flat wire shapes the ESP32/BLE firmware expects. No auth: nodes on the
	// local network push readings directly.
	r.Route("/api", func(r chi.Router) {
		r.Post("/sensors/update", s.handleSensorIngest)
		r.Get("/sensors/{id}", s.handleSensorFetch)
		r.Post("/motion/update", s.handleMotionIngest)
		r.Post("/command", s.handleCommandIngest)
		r.Post("/led/update", s.handleLEDIngest)
	})

	// WebSocket for the dashboard and device nodes
	r.Get("/ws", s.handleWebSocket)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/sensors", func(r chi.Router) {
				r.Get("/", s.handleListSensors)
				r.Post("/", s.handleCreateSensor)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetSensor)
					r.Patch("/", s.handleUpdateSensor)
				})
			})

			r.Route("/lights", func(r chi.Router) {
				r.Get("/", s.handleListLights)
				r.Post("/", s.handleCreateLight)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetLight)
					r.Patch("/", s.handleUpdateLight)
				})
			})

			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", s.handleListScenarios)
				r.Post("/", s.handleCreateScenario)
				r.Get("/{id}", s.handleGetScenario)
			})

			r.Route("/automations", func(r chi.Router) {
				r.Get("/", s.handleListAutomations)
				r.Post("/", s.handleCreateAutomation)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetAutomation)
					r.Patch("/", s.handleUpdateAutomation)
				})
			})

			r.Route("/scheduled-events", func(r chi.Router) {
				r.Get("/", s.handleListScheduledEvents)
				r.Post("/", s.handleCreateScheduledEvent)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetScheduledEvent)
					r.Delete("/", s.handleDeleteScheduledEvent)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
				r.Get("/{id}", s.handleGetUser)
			})
		})
	})

	// HTML dashboard (server-rendered, embedded templates)
	if s.web != nil {
		r.Mount("/", s.web)
	}

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
