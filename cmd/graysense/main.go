// Gray Logic Sensing - sensor processing for the home.
//
// graysense subscribes to sensor readings on the MQTT broker, resolves each
// reading's sensor to the room or person it observes, and keeps the latest
// value of every attribute per entity. A live session can be recorded to a
// JSON Lines file and replayed later through the same pipeline.
//
// The configuration path defaults to configs/config.yaml and can be set with
// GRAYSENSE_CONFIG.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/gray-logic-sensing/internal/api"
	"github.com/nerrad567/gray-logic-sensing/internal/docstore"
	"github.com/nerrad567/gray-logic-sensing/internal/entity"
	"github.com/nerrad567/gray-logic-sensing/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-sensing/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-sensing/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-sensing/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-sensing/internal/model"
	"github.com/nerrad567/gray-logic-sensing/internal/sensing"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns when the session ends: on a shutdown signal, when the
// configured record duration elapses, or when a replay is exhausted.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Gray Logic Sensing",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"mode", cfg.Sensing.Mode,
		"level", cfg.Logging.Level,
	)

	mode, err := sensing.ParseMode(cfg.Sensing.Mode)
	if err != nil {
		return fmt.Errorf("selecting mode: %w", err)
	}

	// Optional description store
	var store *docstore.Store
	if cfg.DocStore.Enabled {
		store, err = docstore.Open(ctx, docStoreURL(cfg.DocStore))
		if err != nil {
			return fmt.Errorf("opening description store: %w", err)
		}
		defer func() {
			log.Info("closing description store")
			if closeErr := store.Close(); closeErr != nil {
				log.Error("error closing description store", "error", closeErr)
			}
		}()
		log.Info("description store opened", "url", store.URL())
	}

	// Backing services reported by the health endpoint
	healthChecks := make(map[string]api.HealthChecker)
	if store != nil {
		healthChecks["docstore"] = store
	}

	reg, err := buildRegistry(ctx, cfg.Sensing.SeedFile, store, log)
	if err != nil {
		return err
	}

	models := model.NewCollectionFromRegistry(reg)
	handler := sensing.NewSensedEntityHandlerFromRegistry(reg)
	handler.SetLogger(log.Component("handler"))

	updater := sensing.NewModelUpdater(models)
	updater.SetLogger(log.Component("model"))
	handler.AddListener(updater)

	if cfg.Sensing.LogEvents {
		handler.AddListener(sensing.NewLoggingListener(log.Component("events")))
	}

	// Optional time-series mirror
	if cfg.InfluxDB.Enabled {
		influxClient, connErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if connErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", connErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		handler.AddListener(sensing.NewInfluxListener(influxClient))
		healthChecks["influxdb"] = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	sessionCfg := sensing.SessionConfig{
		Mode:          mode,
		TopicRoot:     cfg.Sensing.TopicRoot,
		QoS:           byte(cfg.Sensing.QoS), //nolint:gosec // Validated to 0-2
		RecordingFile: cfg.Sensing.RecordingFile,
		Duration:      cfg.Sensing.RecordDuration,
		Logger:        log.Component("sensing"),
	}

	// Live inputs subscribe through the broker; republishing publishes through it
	if mode.Live() || cfg.Sensing.RepublishRoot != "" {
		mqttClient, connErr := mqtt.Connect(cfg.MQTT)
		if connErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", connErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", mqttClient.ClientID(),
		)
		if mode.Live() {
			sessionCfg.Subscriber = mqttClient
		}
		if cfg.Sensing.RepublishRoot != "" {
			sessionCfg.Publisher = mqttClient
			sessionCfg.RepublishRoot = cfg.Sensing.RepublishRoot
			log.Info("republishing events", "root", cfg.Sensing.RepublishRoot)
		}
		healthChecks["mqtt"] = mqttClient
	}

	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:   cfg.API,
			Logger:   log.Component("api"),
			Registry: reg,
			Models:   models,
			Version:  version,

			HealthChecks: healthChecks,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	session, err := sensing.NewSession(sessionCfg, handler)
	if err != nil {
		return fmt.Errorf("creating %s session: %w", mode, err)
	}

	if err := session.Run(ctx); err != nil {
		return fmt.Errorf("running %s session: %w", mode, err)
	}

	logFinalState(log, models)
	if rec := session.Recorder(); rec != nil {
		log.Info("recording written", "file", cfg.Sensing.RecordingFile, "events", rec.Count())
	}

	log.Info("Gray Logic Sensing stopped")
	return nil
}

// docStoreURL returns the configured store URL, or the named database in
// the data directory when no URL is set.
func docStoreURL(cfg config.DocStoreConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return docstore.URLForName(cfg.DataDir, cfg.Name)
}

// buildRegistry populates the registry from the seed file. If the seed file
// is absent and a description store is open, the registry is loaded from
// the store instead. A registry seeded from file is saved to the store.
func buildRegistry(ctx context.Context, seedFile string, store *docstore.Store, log *logging.Logger) (*entity.Registry, error) {
	reg := entity.NewRegistry()

	seed, err := entity.LoadSeed(seedFile)
	switch {
	case err == nil:
		if applyErr := seed.Apply(reg); applyErr != nil {
			return nil, fmt.Errorf("applying seed %s: %w", seedFile, applyErr)
		}
		if store != nil {
			if saveErr := docstore.SaveRegistry(ctx, store, reg); saveErr != nil {
				return nil, fmt.Errorf("saving registry: %w", saveErr)
			}
			log.Info("registry saved to description store")
		}

	case errors.Is(err, os.ErrNotExist) && store != nil:
		log.Info("seed file not found, loading registry from description store", "path", seedFile)
		if loadErr := docstore.LoadRegistry(ctx, store, reg); loadErr != nil {
			return nil, fmt.Errorf("loading registry: %w", loadErr)
		}

	default:
		return nil, fmt.Errorf("loading seed: %w", err)
	}

	sensors, entities, markers := reg.Counts()
	log.Info("registry populated",
		"sensors", sensors,
		"sensed_entities", entities,
		"markers", markers,
		"sensor_associations", len(reg.SensorSensedEntityAssociations()),
	)
	return reg, nil
}

// logFinalState logs the latest values held for every entity.
func logFinalState(log *logging.Logger, models *model.Collection) {
	snapshot := models.Snapshot()
	for _, id := range models.IDs() {
		values := snapshot[id]
		if len(values) == 0 {
			continue
		}
		attrs := make(map[string]float64, len(values))
		for name, v := range values {
			attrs[name] = v.Value
		}
		log.Info("entity state", "entity", id, "values", attrs)
	}
}

// getConfigPath returns the configuration file path.
// Uses GRAYSENSE_CONFIG if set, otherwise the default.
func getConfigPath() string {
	if path := os.Getenv("GRAYSENSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
