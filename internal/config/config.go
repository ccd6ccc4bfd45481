package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup BackupConfig `yaml:"backup"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Lease struct {
		DailyLimitHours int    `yaml:"daily_limit_hours"`
		Timezone        string `yaml:"timezone"`
	} `yaml:"lease"`

	API struct {
		Port          int     `yaml:"port"`
		APIKey        string  `yaml:"api_key"`
		RatePerSecond float64 `yaml:"rate_per_second"`
		Burst         int     `yaml:"burst"`
	} `yaml:"api"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Reports struct {
		MonthlyEnabled bool   `yaml:"monthly_enabled"`
		Dir            string `yaml:"dir"`
	} `yaml:"reports"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	StoragePath   string `yaml:"storage_path"`
	RetentionDays int    `yaml:"retention_days"`
}

// Load reads the YAML config at path. A missing file yields defaults, so the
// service can run from environment variables alone.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("SLAVEMARKET_CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		// Support ${ENV_VAR} placeholders in YAML config.
		data = []byte(os.ExpandEnv(string(data)))
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "data/slavemarket.db"
	}
	if c.Lease.DailyLimitHours <= 0 {
		c.Lease.DailyLimitHours = 16
	}
	if c.Lease.Timezone == "" {
		c.Lease.Timezone = "UTC"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.RatePerSecond <= 0 {
		c.API.RatePerSecond = 10
	}
	if c.API.Burst <= 0 {
		c.API.Burst = 20
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Backup.IntervalHours <= 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
	if c.Reports.Dir == "" {
		c.Reports.Dir = "data/reports"
	}
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	if c.Lease.DailyLimitHours > 24 {
		return fmt.Errorf("lease.daily_limit_hours must be at most 24, got %d", c.Lease.DailyLimitHours)
	}
	if _, err := time.LoadLocation(c.Lease.Timezone); err != nil {
		return fmt.Errorf("lease.timezone: %w", err)
	}
	return nil
}

// Location returns the calendar used to split lease requests into days.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Lease.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CacheTTL returns how long reference data stays cached; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// BackupInterval returns the period between database backups.
func (c *Config) BackupInterval() time.Duration {
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}
