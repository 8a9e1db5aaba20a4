// Package config loads the storefront configuration from a YAML file,
// falling back to defaults, then applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name looked up by the executables.
const DefaultFile = "storefront.yaml"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// APIConfig configures the remote API client.
type APIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	ConnectivityCheck bool          `yaml:"connectivity_check"`
}

// StorageConfig selects the persistent key-value backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// TwinConfig configures the local fake of the storefront API.
type TwinConfig struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"jwt_secret"`
	BasePath  string `yaml:"base_path"`
}

type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Twin    TwinConfig    `yaml:"twin"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:           "http://localhost:8082/api",
			Timeout:           5 * time.Second,
			RetryAttempts:     3,
			RetryDelay:        time.Second,
			ConnectivityCheck: true,
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DSN:    "storefront.db",
		},
		Log: LogConfig{Level: "info"},
		Twin: TwinConfig{
			Addr:      ":8082",
			JWTSecret: "storefront-twin-dev-secret",
			BasePath:  "/api",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Environment overrides are applied last and the result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	set("STOREFRONT_API_BASE_URL", &c.API.BaseURL)
	set("STOREFRONT_STORAGE_DRIVER", &c.Storage.Driver)
	set("STOREFRONT_STORAGE_DSN", &c.Storage.DSN)
	set("STOREFRONT_LOG_LEVEL", &c.Log.Level)
	set("STOREFRONT_TWIN_ADDR", &c.Twin.Addr)
	set("STOREFRONT_TWIN_JWT_SECRET", &c.Twin.JWTSecret)
}

// Validate rejects configurations the app cannot start with.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.API.RetryAttempts < 1 {
		return fmt.Errorf("api.retry_attempts must be at least 1, got %d", c.API.RetryAttempts)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured level name to a slog level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
