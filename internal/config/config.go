package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Port        string `yaml:"port"`
	DBDriver    string `yaml:"db_driver"` // "sqlite" or "postgres"
	DBPath      string `yaml:"db_path"`
	PostgresDSN string `yaml:"postgres_dsn"`

	AnomalyThreshold float64 `yaml:"anomaly_threshold"`
	ScanBatchSize    int     `yaml:"scan_batch_size"`

	RateLimit         int `yaml:"rate_limit"`
	RateWindowSeconds int `yaml:"rate_window_seconds"`
}

func defaults() *Config {
	return &Config{
		Port:              ":8080",
		DBDriver:          "sqlite",
		DBPath:            "./data/taxi.db",
		AnomalyThreshold:  3.0,
		ScanBatchSize:     1000,
		RateLimit:         100,
		RateWindowSeconds: 60,
	}
}

// Load builds the configuration from defaults, an optional YAML file
// pointed at by CONFIG_PATH, and environment variable overrides, in
// that order.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		cfg.DBDriver = driver
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		cfg.DBPath = path
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.PostgresDSN = dsn
	}
	if v := os.Getenv("ANOMALY_THRESHOLD"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.AnomalyThreshold = t
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("db_path cannot be empty for sqlite")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres_dsn cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported db_driver: %s", c.DBDriver)
	}
	if c.AnomalyThreshold <= 0 {
		return fmt.Errorf("anomaly_threshold must be greater than 0")
	}
	if c.ScanBatchSize <= 0 {
		return fmt.Errorf("scan_batch_size must be greater than 0")
	}
	if c.RateLimit <= 0 || c.RateWindowSeconds <= 0 {
		return fmt.Errorf("rate limit settings must be greater than 0")
	}
	return nil
}
