package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Sensing modes accepted in sensing.mode.
const (
	ModeLive   = "live"
	ModeRecord = "record"
	ModeReplay = "replay"
)

// Config is the root configuration structure for Gray Logic Sensing.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Sensing  SensingConfig  `yaml:"sensing"`
	DocStore DocStoreConfig `yaml:"docstore"`
	API      APIConfig      `yaml:"api"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`

	// ClientID identifies this process to the broker.
	// If empty, a unique "graysense-<uuid>" ID is generated on connect.
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
// When enabled, every resolved numeric reading is also written as a point.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SensingConfig controls the sensor processing pipeline.
type SensingConfig struct {
	// Mode selects the pipeline shape: "live", "record" or "replay".
	Mode string `yaml:"mode"`

	// TopicRoot is the root of the broker topic tree carrying sensor readings.
	// The pipeline subscribes to TopicRoot/#.
	TopicRoot string `yaml:"topic_root"`

	// QoS is the subscription QoS for sensor topics.
	QoS int `yaml:"qos"`

	// RecordingFile is the JSON Lines file written in record mode and read in replay mode.
	RecordingFile string `yaml:"recording_file"`

	// SeedFile is the YAML file describing sensors, sensed entities, markers and associations.
	SeedFile string `yaml:"seed_file"`

	// RecordDuration stops a live session after the given time. Zero runs until signalled.
	RecordDuration time.Duration `yaml:"record_duration"`

	// LogEvents attaches a listener that logs every resolved event.
	LogEvents bool `yaml:"log_events"`

	// RepublishRoot, when set, publishes every processed event back to the
	// broker under this root, one topic per sensor. Replaying with it set
	// injects a recording into a live topic tree.
	RepublishRoot string `yaml:"republish_root"`
}

// DocStoreConfig contains settings for the optional entity description store.
type DocStoreConfig struct {
	Enabled bool `yaml:"enabled"`

	// URL names the database directly (sqlite:<file> or plocal:<dir>).
	// When empty the store is the database Name inside DataDir.
	URL     string `yaml:"url"`
	DataDir string `yaml:"data_dir"`
	Name    string `yaml:"name"`
}

// APIConfig contains settings for the read-only HTTP status API.
// When enabled it serves entity state, the registry, health and /metrics.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`

	// Timeouts in seconds.
	ReadTimeout  int `yaml:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout"`

	// RateLimit is the number of requests per minute allowed per client IP.
	// Zero disables rate limiting.
	RateLimit int `yaml:"rate_limit"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYSENSE_SECTION_KEY
// For example: GRAYSENSE_MQTT_HOST, GRAYSENSE_SENSING_MODE
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "home-001",
			Name: "Gray Logic Sensing",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Sensing: SensingConfig{
			Mode:          ModeLive,
			TopicRoot:     "/home/sensor",
			QoS:           1,
			RecordingFile: "./data/sensordata.jsonl",
			SeedFile:      "configs/seed.yaml",
		},
		DocStore: DocStoreConfig{
			DataDir: "./data",
			Name:    "descriptions",
		},
		API: APIConfig{
			Listen:       ":9105",
			ReadTimeout:  10,
			WriteTimeout: 10,
			RateLimit:    120,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYSENSE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("GRAYSENSE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYSENSE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYSENSE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("GRAYSENSE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Sensing
	if v := os.Getenv("GRAYSENSE_SENSING_MODE"); v != "" {
		cfg.Sensing.Mode = v
	}
	if v := os.Getenv("GRAYSENSE_SENSING_RECORDING_FILE"); v != "" {
		cfg.Sensing.RecordingFile = v
	}
	if v := os.Getenv("GRAYSENSE_SENSING_SEED_FILE"); v != "" {
		cfg.Sensing.SeedFile = v
	}
	if v := os.Getenv("GRAYSENSE_SENSING_REPUBLISH_ROOT"); v != "" {
		cfg.Sensing.RepublishRoot = v
	}

	// Document store
	if v := os.Getenv("GRAYSENSE_DOCSTORE_URL"); v != "" {
		cfg.DocStore.URL = v
	}

	// API
	if v := os.Getenv("GRAYSENSE_API_LISTEN"); v != "" {
		cfg.API.Listen = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	mode := strings.ToLower(strings.TrimSpace(c.Sensing.Mode))
	switch mode {
	case ModeLive, ModeRecord:
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required for live sensing")
		}
		if c.Sensing.TopicRoot == "" {
			errs = append(errs, "sensing.topic_root is required for live sensing")
		}
	case ModeReplay:
	default:
		errs = append(errs, fmt.Sprintf("sensing.mode %q must be live, record, or replay", c.Sensing.Mode))
	}

	if c.Sensing.QoS < 0 || c.Sensing.QoS > 2 {
		errs = append(errs, "sensing.qos must be 0, 1, or 2")
	}

	if (mode == ModeRecord || mode == ModeReplay) && c.Sensing.RecordingFile == "" {
		errs = append(errs, "sensing.recording_file is required for record and replay modes")
	}

	if c.Sensing.RecordDuration < 0 {
		errs = append(errs, "sensing.record_duration cannot be negative")
	}

	if c.DocStore.Enabled && c.DocStore.URL == "" && (c.DocStore.DataDir == "" || c.DocStore.Name == "") {
		errs = append(errs, "docstore.url, or docstore.data_dir and docstore.name, is required when docstore is enabled")
	}

	if root := strings.TrimRight(c.Sensing.RepublishRoot, "/"); root != "" {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required for sensing.republish_root")
		}
		if mode != ModeReplay && root == strings.TrimRight(c.Sensing.TopicRoot, "/") {
			errs = append(errs, "sensing.republish_root must differ from sensing.topic_root in live modes")
		}
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if c.API.Enabled && c.API.Listen == "" {
		errs = append(errs, "api.listen is required when the api is enabled")
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, "api.rate_limit cannot be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
