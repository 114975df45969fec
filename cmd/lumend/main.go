// Lumen Core - Device Session & Energy Ledger
//
// This is the main entry point for the Lumen Core daemon. Lumen tracks a
// fixed fleet of smart bulbs: each device holds a session over a realtime
// WebSocket channel, burns energy while powered on, and owners move energy
// between devices through the REST API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lumenfleet/lumen-core/migrations"

	"github.com/lumenfleet/lumen-core/internal/api"
	"github.com/lumenfleet/lumen-core/internal/auth"
	"github.com/lumenfleet/lumen-core/internal/device"
	"github.com/lumenfleet/lumen-core/internal/energy"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/config"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/database"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/influxdb"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/logging"
	"github.com/lumenfleet/lumen-core/internal/infrastructure/mqtt"
	"github.com/lumenfleet/lumen-core/internal/realtime"
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
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
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
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Lumen Core",
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

	// Load the provisioned fleet into the in-memory registry
	devices, err := device.LoadProvisioning(cfg.Devices.Path)
	if err != nil {
		return fmt.Errorf("loading device provisioning: %w", err)
	}
	store := device.NewStore(devices)
	store.SetLogger(log)
	log.Info("device registry initialised", "devices", store.Count(), "path", cfg.Devices.Path)

	// Ensure every provisioned device has an owner account
	owners := auth.NewOwnerRepository(db.DB)
	if seedErr := auth.SeedOwners(ctx, owners, store.IDs(), log.Logger); seedErr != nil {
		return fmt.Errorf("seeding owner accounts: %w", seedErr)
	}

	// Realtime session table and protocol handler
	sessions := realtime.NewTable()
	defer sessions.Close()

	rt := realtime.NewHandler(store, sessions, cfg.WebSocket)
	rt.SetLogger(log)

	// Energy service and transfer ledger
	ledger := energy.NewLedger(db.DB)
	svc := energy.NewService(store, ledger, sessions)
	svc.SetLogger(log)

	// Presence oracle
	oracle := device.NewOracle(store, time.Duration(cfg.Presence.OnlineThreshold)*time.Second)

	// Connect to MQTT state bus (optional)
	var (
		mqttClient *mqtt.Client
		stateBus   *api.StateBus
	)
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
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		stateBus = api.NewStateBus(mqttClient, log)
		rt.SetStatePublisher(stateBus)
		svc.SetStatePublisher(stateBus)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB telemetry (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		svc.SetTelemetry(influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Decay engine: debit powered-on devices every tick
	engine := energy.NewEngine(store, sessions, time.Duration(cfg.Energy.DecayInterval)*time.Second)
	engine.SetLogger(log)
	if stateBus != nil {
		engine.SetStatePublisher(stateBus)
	}
	if influxClient != nil {
		engine.SetTelemetry(influxClient)
	}
	go engine.Run(ctx)
	log.Info("decay engine started", "interval_seconds", cfg.Energy.DecayInterval)

	// API server
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Store:    store,
		Oracle:   oracle,
		Sessions: sessions,
		Realtime: rt,
		Energy:   svc,
		Ledger:   ledger,
		Owners:   owners,
		MQTT:     mqttClient,
		Influx:   influxClient,
		DB:       db,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (drains in-flight requests)
	// 2. InfluxDB (if enabled)
	// 3. MQTT (publishes graceful offline status)
	// 4. Realtime sessions
	// 5. Database

	log.Info("Lumen Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LUMEN_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LUMEN_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// MQTT and InfluxDB are skipped when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
