package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config is the top-level service configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Storage  StorageConfig  `yaml:"storage"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// PipelineConfig configures the observability pipeline
type PipelineConfig struct {
	// DevMode gates the persistence flush loop and the log bridge.
	DevMode       bool          `yaml:"dev_mode"`
	BufferSize    int           `yaml:"buffer_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	FlushBatch    int           `yaml:"flush_batch"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	EvalInterval  time.Duration `yaml:"eval_interval"`
}

// StorageConfig configures the durable store
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// NotifyConfig configures outbound notifications
type NotifyConfig struct {
	WebhookTimeout time.Duration `yaml:"webhook_timeout"`
}

// ApplyDefaults fills in default values
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8600
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Pipeline.BufferSize == 0 {
		c.Pipeline.BufferSize = 1000
	}
	if c.Pipeline.FlushInterval == 0 {
		c.Pipeline.FlushInterval = 30 * time.Second
	}
	if c.Pipeline.FlushBatch == 0 {
		c.Pipeline.FlushBatch = 100
	}
	if c.Pipeline.SweepInterval == 0 {
		c.Pipeline.SweepInterval = 2 * time.Minute
	}
	if c.Pipeline.EvalInterval == 0 {
		c.Pipeline.EvalInterval = 30 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageDriverMemory
	}
	if c.Notify.WebhookTimeout == 0 {
		c.Notify.WebhookTimeout = 10 * time.Second
	}
}

// Validate checks configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port: %d", c.Server.Port)
	}
	if c.Pipeline.BufferSize < 0 {
		return errors.New("config: buffer size must be positive")
	}
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("config: dsn is required for postgres storage")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("config: invalid storage driver: %s", c.Storage.Driver)
	}
	return nil
}

// LoadFile loads configuration from a YAML file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}
