package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv(cfg *Config) {
	if port := os.Getenv("SENTINEL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	if logLevel := os.Getenv("SENTINEL_LOG_LEVEL"); logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}

	if dev := os.Getenv("SENTINEL_DEV_MODE"); dev != "" {
		cfg.Pipeline.DevMode = dev == "true" || dev == "1"
	}

	if size := os.Getenv("SENTINEL_BUFFER_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil {
			cfg.Pipeline.BufferSize = n
		}
	}

	if interval := os.Getenv("SENTINEL_FLUSH_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Pipeline.FlushInterval = d
		}
	}

	if driver := os.Getenv("SENTINEL_STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}

	if dsn := os.Getenv("SENTINEL_STORAGE_DSN"); dsn != "" {
		cfg.Storage.DSN = dsn
	}
}
