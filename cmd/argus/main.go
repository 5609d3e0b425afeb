// Argus Core - Physical Security Management Platform
//
// This is the main entry point for the Argus Core application. Argus
// unifies YoLink sensors, Piko video surveillance, and Genea access
// control behind one normalized device model, live state feed, and
// alarm zone engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/argus-security/argus-core/migrations"

	"github.com/argus-security/argus-core/internal/alarm"
	"github.com/argus-security/argus-core/internal/api"
	"github.com/argus-security/argus-core/internal/connector"
	"github.com/argus-security/argus-core/internal/device"
	"github.com/argus-security/argus-core/internal/infrastructure/config"
	"github.com/argus-security/argus-core/internal/infrastructure/database"
	"github.com/argus-security/argus-core/internal/infrastructure/influxdb"
	"github.com/argus-security/argus-core/internal/infrastructure/logging"
	"github.com/argus-security/argus-core/internal/infrastructure/mqtt"
	"github.com/argus-security/argus-core/internal/ingest"
	"github.com/argus-security/argus-core/internal/location"
	"github.com/argus-security/argus-core/internal/statestore"
	"github.com/argus-security/argus-core/internal/syncer"
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

// Local interface aliases for optional infrastructure. Wiring through
// these keeps a disabled InfluxDB or MQTT client as a true nil interface
// instead of a typed-nil pointer.
type (
	zoneEventSink interface {
		WriteZoneEvent(zoneID, armedState, deviceID string)
	}
	syncMetricsSink interface {
		WriteSyncRun(syncedCount, errorCount int, duration time.Duration)
	}
	transitionSink interface {
		WriteStateTransition(connectorID, deviceID, deviceType, displayState string)
	}
	statePublisher interface {
		Publish(topic string, payload []byte, qos byte, retained bool) error
	}
)

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
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup wiring
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Argus Core",
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
	connRepo := connector.NewSQLiteRepository(db.DB)
	devRepo := device.NewSQLiteRepository(db.DB)
	serverRepo := device.NewSQLiteServerRepository(db.DB)
	locRepo := location.NewSQLiteRepository(db.DB)
	zoneRepo := alarm.NewSQLiteRepository(db.DB)
	assocRepo := device.NewSQLiteAssociationRepository(db.DB)

	// Warm the in-memory state store from the persisted inventory so the
	// live feed is useful before the first sync or event arrives.
	store := statestore.NewStore(log)
	if seedErr := seedStateStore(ctx, store, connRepo, devRepo); seedErr != nil {
		return fmt.Errorf("seeding state store: %w", seedErr)
	}
	log.Info("state store seeded", "devices", store.Len())

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
		log.Info("MQTT disabled; live event ingestion off")
	}

	// Connect to InfluxDB (optional)
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

		influxClient.SetOnError(func(writeErr error) {
			log.Error("InfluxDB write error", "error", writeErr)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	var (
		zoneEvents  zoneEventSink
		syncMetrics syncMetricsSink
		transitions transitionSink
		publisher   statePublisher
	)
	if influxClient != nil {
		zoneEvents = influxClient
		syncMetrics = influxClient
		transitions = influxClient
	}
	if mqttClient != nil {
		publisher = mqttClient
	}

	// Alarm engine evaluates every state-store change against armed zones.
	alarmSvc := alarm.NewService(zoneRepo, devRepo, zoneEvents, publisher, log)
	store.Subscribe(alarmSvc.HandleDeviceState)

	// Event ingestion: MQTT connector events into the store, canonical
	// state back out.
	if mqttClient != nil {
		ingestSvc := ingest.NewService(mqttClient, store, transitions, log)
		if startErr := ingestSvc.Start(); startErr != nil {
			return fmt.Errorf("starting event ingestion: %w", startErr)
		}
	}

	// Device sync orchestrator
	syncSvc := syncer.NewService(connRepo, devRepo, serverRepo, store, syncMetrics, log, cfg.GetSyncHTTPTimeout())
	if interval := cfg.GetSyncInterval(); interval > 0 {
		go runPeriodicSync(ctx, syncSvc, interval, log)
		log.Info("periodic sync scheduled", "interval", interval)
	} else {
		log.Info("periodic sync disabled; on-demand sync only")
	}

	// HTTP API and WebSocket server
	apiServer, err := api.New(api.Deps{
		Config:       cfg.API,
		WS:           cfg.WebSocket,
		Security:     cfg.Security,
		Logger:       log,
		Store:        store,
		Devices:      devRepo,
		Connectors:   connRepo,
		Locations:    locRepo,
		Zones:        zoneRepo,
		Alarms:       alarmSvc,
		Associations: assocRepo,
		Syncer:       syncSvc,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Argus Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ARGUS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ARGUS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// seedStateStore loads the persisted inventory into the state store.
//
// Connector rows feed category resolution for incoming events. Device
// rows whose stored status is a canonical display value seed the live
// display state; vendor health strings are not display states and leave
// it unset.
func seedStateStore(ctx context.Context, store *statestore.Store, connRepo connector.Repository, devRepo device.Repository) error {
	connectors, err := connRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("listing connectors: %w", err)
	}
	store.SetConnectors(connectors)

	enriched, err := devRepo.ListEnriched(ctx)
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}
	for i := range enriched {
		if enriched[i].Status == nil {
			continue
		}
		if ds, ok := device.ParseDisplayState(*enriched[i].Status); ok {
			s := string(ds)
			enriched[i].DisplayState = &s
		}
	}
	store.SetDeviceStatesFromSync(enriched)
	return nil
}

// runPeriodicSync runs the sync orchestrator on a fixed interval until
// the context is cancelled.
func runPeriodicSync(ctx context.Context, svc *syncer.Service, interval time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := svc.SyncAll(ctx)
			if err != nil {
				log.Error("periodic sync failed", "error", err)
				continue
			}
			log.Info("periodic sync complete",
				"synced", result.SyncedCount,
				"errors", len(result.Errors),
			)
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, apiServer *api.Server) error {
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

	if err := apiServer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}
