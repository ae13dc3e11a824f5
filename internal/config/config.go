package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration for the gateway and the dashboard.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Storage    StorageConfig    `yaml:"storage"`
	Cache      CacheConfig      `yaml:"cache"`
	Prediction PredictionConfig `yaml:"prediction"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	Log        LogConfig        `yaml:"log"`
}

// HTTPConfig controls the gateway server.
type HTTPConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	CORSOrigins  []string      `yaml:"corsOrigins"`
}

// StorageConfig selects and configures the record store.
type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	Path     string         `yaml:"path"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// CacheConfig controls the summary cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	TTL     time.Duration `yaml:"ttl"`
}

// PredictionConfig holds forecast defaults.
type PredictionConfig struct {
	DefaultDays int `yaml:"defaultDays"`
	MinRecords  int `yaml:"minRecords"`
}

// DashboardConfig controls the terminal dashboard client.
type DashboardConfig struct {
	GatewayURL     string        `yaml:"gatewayUrl"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	ExportDir      string        `yaml:"exportDir"`
	LogFile        string        `yaml:"logFile"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("DATABASE_FILE"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = parsed
		}
	}
	if v := os.Getenv("PREDICTION_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Prediction.DefaultDays = parsed
		}
	}
	if v := os.Getenv("MIN_RECORDS_FOR_PREDICTION"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Prediction.MinRecords = parsed
		}
	}
	if v := os.Getenv("GATEWAY_URL"); v != "" {
		cfg.Dashboard.GatewayURL = v
	}
	if v := os.Getenv("GATEWAY_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Dashboard.RequestTimeout = parsed
		}
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		cfg.Dashboard.ExportDir = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Dashboard.LogFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Default returns the built-in configuration.
func Default() *Config {
	dataDir := defaultDataDir()
	home, _ := os.UserHomeDir()
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":5000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			CORSOrigins:  []string{"http://localhost:3000", "http://localhost:5000"},
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   filepath.Join(dataDir, "carbontrack.db"),
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Cache: CacheConfig{
			TTL: 300 * time.Second,
		},
		Prediction: PredictionConfig{
			DefaultDays: 30,
			MinRecords:  5,
		},
		Dashboard: DashboardConfig{
			GatewayURL:     "http://localhost:5000/api",
			RequestTimeout: 10 * time.Second,
			ExportDir:      home,
			LogFile:        filepath.Join(dataDir, "dashboard.log"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// defaultDataDir returns ~/.config/carbontrack, or a relative fallback.
func defaultDataDir() string {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "carbontrack-data"
	}
	return filepath.Join(cfg, "carbontrack")
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	switch c.Storage.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return errors.New("storage.path cannot be empty for sqlite")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.Postgres.DSN) == "" {
			return errors.New("storage.postgres.dsn cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("cache.addr cannot be empty when the cache is enabled")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	if c.Prediction.DefaultDays <= 0 {
		return errors.New("prediction.defaultDays must be positive")
	}
	if c.Prediction.MinRecords <= 0 {
		return errors.New("prediction.minRecords must be positive")
	}
	if strings.TrimSpace(c.Dashboard.GatewayURL) == "" {
		return errors.New("dashboard.gatewayUrl cannot be empty")
	}
	if c.Dashboard.RequestTimeout <= 0 {
		return errors.New("dashboard.requestTimeout must be positive")
	}
	return nil
}
