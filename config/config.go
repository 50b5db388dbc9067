/*
config.go - Runtime configuration for the obpay server and CLI

PURPOSE:
  Loads ~/.obpay.yaml (or an explicit path), applies defaults for missing
  values, then environment overrides. A .env file in the working directory
  is read first so local overrides need no exported variables.

ENVIRONMENT:
  OBPAY_DATABASE   SQLite database path
  OBPAY_ADDR       HTTP listen address
  OBPAY_LOG_LEVEL  debug | info | warn | error
  OBPAY_WORKPLACE  retail | warehouse (default settings only)

SEE ALSO:
  - factory/settings.go: the settings document carried as Defaults
  - cmd/obpay/main.go: where Load is called
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/pay"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabasePath string `yaml:"database_path"`
	Addr         string `yaml:"addr"`
	LogLevel     string `yaml:"log_level"`

	// AllowedOrigins feeds the CORS middleware.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// RefreshInterval is how often live earnings are recomputed.
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// Timezone used to read the wall clock of a live session.
	Timezone string `yaml:"timezone"`

	// Defaults are the settings used until settings are saved in the store.
	Defaults factory.SettingsJSON `yaml:"defaults"`
}

// DefaultPath returns ~/.obpay.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".obpay.yaml")
}

// Load reads the config file at path (DefaultPath when empty). A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(expandHome(path))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	cfg.DatabasePath = expandHome(cfg.DatabasePath)
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DatabasePath:    filepath.Join(home, ".obpay", "obpay.db"),
		Addr:            ":8080",
		LogLevel:        "info",
		AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
		RefreshInterval: time.Second,
		Timezone:        "Europe/Stockholm",
		Defaults:        factory.DefaultSettingsJSON(pay.WorkplaceRetail),
	}
}

// Save writes the configuration as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(expandHome(path), data, 0644)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OBPAY_DATABASE"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("OBPAY_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("OBPAY_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("OBPAY_WORKPLACE"); v != "" {
		c.Defaults = factory.DefaultSettingsJSON(pay.Workplace(v))
	}
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = def.RefreshInterval
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.Defaults.Workplace == "" {
		c.Defaults.Workplace = string(pay.WorkplaceRetail)
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s - %s", e.Field, e.Message)
}

// Validate checks the configuration for common issues
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return &ValidationError{Field: "database_path", Message: "Database path is required"}
	}
	if c.Addr == "" {
		return &ValidationError{Field: "addr", Message: "Listen address is required"}
	}
	if _, err := c.Location(); err != nil {
		return &ValidationError{Field: "timezone", Message: err.Error()}
	}
	if _, err := factory.NewSettingsFactory().FromJSON(c.Defaults); err != nil {
		return &ValidationError{Field: "defaults", Message: err.Error()}
	}
	return nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
