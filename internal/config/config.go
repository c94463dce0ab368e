// Package config loads the application configuration from an optional
// YAML file, a local .env file and environment variables, in that order
// of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ignite/catalog-sync/internal/omie"
	"github.com/ignite/catalog-sync/internal/xbz"
)

// Config holds all configuration for the application.
type Config struct {
	XBZ      xbz.Config     `yaml:"xbz"`
	Omie     omie.Config    `yaml:"omie"`
	Sync     SyncConfig     `yaml:"sync"`
	Report   ReportConfig   `yaml:"report"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
}

// SyncConfig tunes the controller.
type SyncConfig struct {
	// MaxInserts caps insertions per run (default 500).
	MaxInserts int `yaml:"max_inserts"`
	// WriteDelayMillis is the pause between write calls (default 1100).
	WriteDelayMillis int `yaml:"write_delay_millis"`
}

// WriteDelay returns the configured write pacing as a duration.
func (c SyncConfig) WriteDelay() time.Duration {
	return time.Duration(c.WriteDelayMillis) * time.Millisecond
}

// ReportConfig holds the report sink settings. S3 upload is enabled by
// setting a bucket; credentials fall back to the default AWS chain.
type ReportConfig struct {
	Dir          string `yaml:"dir"`
	S3Bucket     string `yaml:"s3_bucket"`
	S3Region     string `yaml:"s3_region"`
	AWSAccessKey string `yaml:"aws_access_key"`
	AWSSecretKey string `yaml:"aws_secret_key"`
}

// ServerConfig holds the control API settings (cmd/server only).
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig enables the optional run-history repository and the
// advisory-lock fallback.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig enables the optional Redis-backed run lock.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// Load reads the YAML file at path (missing file is fine: everything can
// come from the environment) and applies defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if cfg.XBZ.BaseURL == "" {
		cfg.XBZ.BaseURL = "https://api.minhaxbz.com.br:5001/api/clientes"
	}
	if cfg.XBZ.TimeoutSeconds == 0 {
		cfg.XBZ.TimeoutSeconds = 60
	}
	if cfg.Omie.Endpoint == "" {
		cfg.Omie.Endpoint = "https://app.omie.com.br/api/v1/geral/produtos/"
	}
	if cfg.Sync.MaxInserts == 0 {
		cfg.Sync.MaxInserts = 500
	}
	if cfg.Sync.WriteDelayMillis == 0 {
		cfg.Sync.WriteDelayMillis = 1100
	}
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = "logs"
	}
	if cfg.Report.S3Region == "" {
		cfg.Report.S3Region = "us-east-1"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// A .env file (if present) is loaded first, so secrets can live in .env
// locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("XBZ_BASE_URL"); v != "" {
		cfg.XBZ.BaseURL = v
	}
	if v := os.Getenv("XBZ_TOKEN"); v != "" {
		cfg.XBZ.Token = v
	}
	if v := os.Getenv("XBZ_CNPJ"); v != "" {
		cfg.XBZ.CNPJ = v
	}
	if v := os.Getenv("OMIE_ENDPOINT"); v != "" {
		cfg.Omie.Endpoint = v
	}
	if v := os.Getenv("OMIE_APP_KEY"); v != "" {
		cfg.Omie.AppKey = v
	}
	if v := os.Getenv("OMIE_APP_SECRET"); v != "" {
		cfg.Omie.AppSecret = v
	}
	if v := os.Getenv("SYNC_MAX_INSERTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SYNC_MAX_INSERTS %q", v)
		}
		cfg.Sync.MaxInserts = n
	}
	if v := os.Getenv("REPORT_DIR"); v != "" {
		cfg.Report.Dir = v
	}
	if v := os.Getenv("REPORT_S3_BUCKET"); v != "" {
		cfg.Report.S3Bucket = v
	}
	if v := os.Getenv("REPORT_S3_REGION"); v != "" {
		cfg.Report.S3Region = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT %q", v)
		}
		cfg.Server.Port = n
	}

	return cfg, nil
}

// Validate checks that the credentials a sync run needs are present.
func (c *Config) Validate() error {
	if c.XBZ.Token == "" || c.XBZ.CNPJ == "" {
		return errors.New("missing XBZ credentials (XBZ_TOKEN, XBZ_CNPJ)")
	}
	if c.Omie.AppKey == "" || c.Omie.AppSecret == "" {
		return errors.New("missing Omie credentials (OMIE_APP_KEY, OMIE_APP_SECRET)")
	}
	return nil
}
