// Package api provides the HTTP REST API and WebSocket server for AppLight Core.
//
// It exposes device ingestion endpoints for ESP32/BLE nodes, a versioned CRUD
// API for dashboards and tooling, and a WebSocket hub for real-time pushes.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/applight/applight-core/internal/auth"
	"github.com/applight/applight-core/internal/automation"
	"github.com/applight/applight-core/internal/infrastructure/config"
	"github.com/applight/applight-core/internal/infrastructure/logging"
	"github.com/applight/applight-core/internal/infrastructure/mqtt"
	"github.com/applight/applight-core/internal/light"
	"github.com/applight/applight-core/internal/scene"
	"github.com/applight/applight-core/internal/sensor"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.APIConfig
	WS          config.WebSocketConfig
	Security    config.SecurityConfig
	Logger      *logging.Logger
	Sensors     sensor.Repository
	Lights      light.Repository
	Scenarios   scene.Repository
	Automations automation.Repository
	Events      automation.EventRepository
	Users       auth.UserRepository
	MQTT        *mqtt.Client // optional: device bus republish and ingest
	Web         http.Handler // optional: HTML dashboard mounted at /
	Version     string
}

// Server is the HTTP API server for AppLight Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	secCfg      config.SecurityConfig
	logger      *logging.Logger
	sensors     sensor.Repository
	lights      light.Repository
	scenarios   scene.Repository
	automations automation.Repository
	events      automation.EventRepository
	users       auth.UserRepository
	mqtt        *mqtt.Client
	web         http.Handler
	version     string
	server      *http.Server
	hub         *Hub
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, repositories)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Sensors == nil {
		return nil, fmt.Errorf("sensor repository is required")
	}
	if deps.Lights == nil {
		return nil, fmt.Errorf("light repository is required")
	}
	if deps.Scenarios == nil {
		return nil, fmt.Errorf("scenario repository is required")
	}
	if deps.Automations == nil {
		return nil, fmt.Errorf("automation repository is required")
	}
	if deps.Events == nil {
		return nil, fmt.Errorf("scheduled event repository is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	// MQTT is optional: ingestion still works over HTTP without the device bus

	s := &Server{
		cfg:         deps.Config,
		wsCfg:       deps.WS,
		secCfg:      deps.Security,
		logger:      deps.Logger,
		sensors:     deps.Sensors,
		lights:      deps.Lights,
		scenarios:   deps.Scenarios,
		automations: deps.Automations,
		events:      deps.Events,
		users:       deps.Users,
		mqtt:        deps.MQTT,
		web:         deps.Web,
		version:     deps.Version,
	}

	s.hub = NewHub(s.wsCfg, s.logger, s.sensorSnapshots)

	return s, nil
}

// Hub returns the WebSocket hub so other components (the automation poller)
// can broadcast events to connected clients.
func (s *Server) Hub() *Hub {
	return s.hub
}

// sensorSnapshots builds the sensor snapshot list pushed to WebSocket clients
// that ask for an update.
func (s *Server) sensorSnapshots(ctx context.Context) ([]sensor.Snapshot, error) {
	sensors, err := s.sensors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sensors for snapshot: %w", err)
	}
	snaps := make([]sensor.Snapshot, 0, len(sensors))
	for i := range sensors {
		snaps = append(snaps, sensors[i].Snapshot())
	}
	return snaps, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub, subscribes to MQTT sensor topics when the
// device bus is connected, and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	// Create internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	// Relay sensor readings arriving over the device bus into the store
	if err := s.subscribeSensorIngest(); err != nil {
		s.logger.Warn("failed to subscribe to sensor ingest topics", "error", err)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
