package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for schema-snap.
// Configuration can come from YAML file (config.yaml) or environment
// variables; environment variables always override YAML values.
// Secrets (API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Snapshot/template persistence
	Store StoreConfig `yaml:"store"`

	// External relationship oracle
	Oracle OracleConfig `yaml:"oracle"`

	// Ingestion bounds
	Ingest IngestConfig `yaml:"ingest"`
}

// StoreConfig holds sqlite persistence settings.
type StoreConfig struct {
	// Path is the sqlite database file. ":memory:" keeps state in-process.
	Path string `yaml:"path" env:"STORE_PATH" env-default:"schema-snap.db"`
	// SeedTemplatesPath optionally points at a YAML file of templates
	// loaded on first start. Empty disables seeding.
	SeedTemplatesPath string `yaml:"seed_templates_path" env:"STORE_SEED_TEMPLATES_PATH" env-default:""`
}

// OracleConfig holds the external relationship oracle settings.
// The oracle is optional; when disabled the snapshot pipeline runs on
// heuristic relationships alone.
type OracleConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ORACLE_ENABLED" env-default:"false"`
	Provider string `yaml:"provider" env:"ORACLE_PROVIDER" env-default:"openai"` // "openai" or "anthropic"
	BaseURL  string `yaml:"base_url" env:"ORACLE_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"ORACLE_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"ORACLE_API_KEY"` // Secret - not in YAML
	// TimeoutSeconds bounds one oracle call including retries.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"ORACLE_TIMEOUT_SECONDS" env-default:"60"`
}

// IsAvailable returns true if the oracle is enabled and configured.
func (c *OracleConfig) IsAvailable() bool {
	return c.Enabled && c.Model != ""
}

// Timeout returns TimeoutSeconds as a duration. Zero or negative
// values disable the bound.
func (c *OracleConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IngestConfig bounds how much data profiling retains per table.
type IngestConfig struct {
	// SampleRowLimit caps the sample rows kept per table.
	SampleRowLimit int `yaml:"sample_row_limit" env:"INGEST_SAMPLE_ROW_LIMIT" env-default:"200"`
	// SampleValueLimit caps the distinct sample values kept per column.
	SampleValueLimit int `yaml:"sample_value_limit" env:"INGEST_SAMPLE_VALUE_LIMIT" env-default:"50"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. When no config.yaml exists, configuration comes from the
// environment alone. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}

	if cfg.Ingest.SampleRowLimit <= 0 || cfg.Ingest.SampleValueLimit <= 0 {
		return nil, fmt.Errorf("ingest sample limits must be positive")
	}

	return cfg, nil
}
