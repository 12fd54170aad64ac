// AppLight Core - Home Automation Hub
//
// This is the main entry point for the AppLight Core application.
// AppLight Core serves the HTML dashboard, the device ingestion API,
// and the real-time WebSocket feed for a small home automation setup:
//   - SQLite-backed state for sensors, lights, scenarios, and automations
//   - Flat JSON ingestion endpoints for ESP32 device firmware
//   - Optional MQTT device bus for command and event fan-out
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/applight/applight-core/migrations"

	"github.com/applight/applight-core/internal/api"
	"github.com/applight/applight-core/internal/auth"
	"github.com/applight/applight-core/internal/automation"
	"github.com/applight/applight-core/internal/infrastructure/config"
	"github.com/applight/applight-core/internal/infrastructure/database"
	"github.com/applight/applight-core/internal/infrastructure/logging"
	"github.com/applight/applight-core/internal/infrastructure/mqtt"
	"github.com/applight/applight-core/internal/light"
	"github.com/applight/applight-core/internal/scene"
	"github.com/applight/applight-core/internal/sensor"
	"github.com/applight/applight-core/internal/web"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Load .env before config so APPLIGHT_* overrides are visible.
	// Missing file is fine; production deployments use real env vars.
	_ = godotenv.Load()

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting AppLight Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	sensorRepo := sensor.NewSQLiteRepository(db.DB)
	lightRepo := light.NewSQLiteRepository(db.DB)
	sceneRepo := scene.NewSQLiteRepository(db.DB)
	automationRepo := automation.NewSQLiteRepository(db.DB)
	eventRepo := automation.NewSQLiteEventRepository(db.DB)
	userRepo := auth.NewUserRepository(db.DB)

	// Seed the initial admin account on first boot.
	// SeedAdmin logs the generated password itself.
	if _, seedErr := auth.SeedAdmin(ctx, userRepo, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(discErr error) {
			log.Warn("MQTT disconnected", "error", discErr)
		})
	} else {
		log.Info("MQTT disabled, running HTTP-only")
	}

	// HTML dashboard
	webHandler, err := web.New(web.Deps{
		Logger:      log,
		Sensors:     sensorRepo,
		Lights:      lightRepo,
		Scenarios:   sceneRepo,
		Automations: automationRepo,
	})
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}

	// HTTP API server
	apiServer, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Security:    cfg.Security,
		Logger:      log,
		Sensors:     sensorRepo,
		Lights:      lightRepo,
		Scenarios:   sceneRepo,
		Automations: automationRepo,
		Events:      eventRepo,
		Users:       userRepo,
		MQTT:        mqttClient,
		Web:         webHandler,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"host", cfg.API.Host,
		"port", cfg.API.Port,
	)

	// Automation poller
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolving timezone: %w", err)
	}
	poller := automation.NewPoller(automationRepo, eventRepo, apiServer.Hub(), cfg.PollInterval())
	poller.SetLogger(log)
	poller.SetLocation(loc)
	if mqttClient != nil {
		poller.SetMQTT(mqttClient)
	}
	// Run logs its own start line with interval and timezone.
	go poller.Run(ctx)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, apiServer, mqttClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. MQTT (if enabled)
	// 3. Database

	log.Info("AppLight Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses APPLIGHT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("APPLIGHT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// mqttClient may be nil when the device bus is disabled.
func healthCheck(ctx context.Context, db *database.DB, apiServer *api.Server, mqttClient *mqtt.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := apiServer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	return nil
}
