// Package config loads the service configuration from JSON or YAML files
// with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/swiftresponder/swiftresponder/core/selector"
	"github.com/swiftresponder/swiftresponder/core/tracker"
	"github.com/swiftresponder/swiftresponder/infra/ai"
	"github.com/swiftresponder/swiftresponder/infra/directions"
	"github.com/swiftresponder/swiftresponder/infra/mqtt"
	"github.com/swiftresponder/swiftresponder/infra/places"
	"github.com/swiftresponder/swiftresponder/infra/weather"
	"github.com/swiftresponder/swiftresponder/simulator"
)

// Config is the root service configuration.
type Config struct {
	Fleet      simulator.FleetConfig `json:"fleet"`
	Selector   selector.Config       `json:"selector"`
	Tracker    tracker.Config        `json:"tracker"`
	Places     places.Config         `json:"places"`
	Directions directions.Config     `json:"directions"`
	Weather    weather.Config        `json:"weather"`
	AI         AIConfig              `json:"ai"`
	MQTT       MQTTConfig            `json:"mqtt"`
	Metrics    MetricsConfig         `json:"metrics"`
	History    HistoryConfig         `json:"history"`
	API        APIConfig             `json:"api"`
}

// AIConfig wraps the completion client settings with an enable switch.
type AIConfig struct {
	Enabled   bool `json:"enabled"`
	ai.Config `json:",squash"`
}

// MQTTConfig wraps the broker settings with an enable switch.
type MQTTConfig struct {
	Enabled     bool `json:"enabled"`
	mqtt.Config `json:",squash"`
}

// MetricsConfig selects the observability sinks.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":2112"
	}
}

// HistoryConfig defines settings for dispatch history storage.
type HistoryConfig struct {
	// Backend selects the store type: "jsonl" or "memory".
	Backend string `json:"backend"`
	// Path is the file location of the JSONL store.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *HistoryConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "dispatch_history.jsonl"
	}
}

// Validate checks mandatory fields.
func (c HistoryConfig) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "memory" {
		return fmt.Errorf("unknown history backend %s", c.Backend)
	}
	if c.Backend == "jsonl" && c.Path == "" {
		return fmt.Errorf("history path is required")
	}
	return nil
}

// APIConfig defines the HTTP surface settings.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token guards the history endpoint when non-empty.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// Load reads the configuration file at path. Environment variables prefixed
// with SR_ override file values, with "__" separating nested keys.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("SR_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sr_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills every section's zero values.
func (c *Config) ApplyDefaults() {
	c.Fleet.SetDefaults()
	c.Selector.SetDefaults()
	c.Tracker.SetDefaults()
	c.Places.SetDefaults()
	c.Directions.SetDefaults()
	c.Weather.SetDefaults()
	c.AI.Config.SetDefaults()
	c.MQTT.Config.SetDefaults()
	c.Metrics.SetDefaults()
	c.History.SetDefaults()
	c.API.SetDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Selector.Validate(); err != nil {
		return err
	}
	return c.History.Validate()
}
