// Package config loads cleared.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/backoffice/internal/logging"
)

// FileName is the conventional config file name.
const FileName = "cleared.yaml"

// Environment variables that override file values.
const (
	EnvAddr               = "CLEARED_ADDR"
	EnvDBPath             = "CLEARED_DB_PATH"
	EnvLogLevel           = "CLEARED_LOG_LEVEL"
	EnvLogFormat          = "CLEARED_LOG_FORMAT"
	EnvDefaultPaymentCode = "CLEARED_DEFAULT_PAYMENT_CODE"
)

// Config represents the top-level cleared.yaml configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LedgerConfig holds accounting defaults.
type LedgerConfig struct {
	// DefaultPaymentCode is the account code expenditures are paid from
	// when neither the expenditure nor the owner's settings name one.
	DefaultPaymentCode string `yaml:"default_payment_code"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // auto, json, console
}

// Load reads a cleared.yaml file from disk. Fields the file omits keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads path if it exists and falls back to Default
// otherwise. A .env file in the working directory is loaded into the
// environment, then environment overrides are applied and the result is
// validated.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	// A missing .env is normal.
	_ = godotenv.Load()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new install.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "data/cleared.db",
		},
		Ledger: LedgerConfig{
			DefaultPaymentCode: "1000",
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatAuto,
		},
	}
}

// ApplyEnv overrides fields from CLEARED_* environment variables.
func (c *Config) ApplyEnv() {
	setFromEnv(&c.Server.Addr, EnvAddr)
	setFromEnv(&c.Database.Path, EnvDBPath)
	setFromEnv(&c.Log.Level, EnvLogLevel)
	setFromEnv(&c.Log.Format, EnvLogFormat)
	setFromEnv(&c.Ledger.DefaultPaymentCode, EnvDefaultPaymentCode)
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path is required")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}
	if strings.TrimSpace(c.Ledger.DefaultPaymentCode) == "" {
		return errors.New("ledger.default_payment_code is required")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "", logging.FormatAuto, logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}
