// Package common provides shared utilities for Fundboard
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Fundboard
type Config struct {
	Environment string            `toml:"environment"`
	VersionFile string            `toml:"version_file"` // YAML build metadata, relative to the binary
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Auth        AuthConfig        `toml:"auth"`
	Logging     LoggingConfig     `toml:"logging"`
	Performance PerformanceConfig `toml:"performance"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string          `toml:"host"`
	Port            int             `toml:"port"`
	CORSOrigins     []string        `toml:"cors_origins"`
	RateLimit       RateLimitConfig `toml:"rate_limit"`
	ReadTimeout     string          `toml:"read_timeout"`
	WriteTimeout    string          `toml:"write_timeout"`
	IdleTimeout     string          `toml:"idle_timeout"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Timeouts parses the server durations, substituting the default for any
// value that is unset or malformed.
func (c *ServerConfig) Timeouts() (read, write, idle, shutdown time.Duration) {
	return parseDurationOr(c.ReadTimeout, 30*time.Second),
		parseDurationOr(c.WriteTimeout, 60*time.Second),
		parseDurationOr(c.IdleTimeout, 60*time.Second),
		parseDurationOr(c.ShutdownTimeout, 10*time.Second)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// RateLimitConfig bounds requests per client IP.
type RateLimitConfig struct {
	Enabled           bool `toml:"enabled"`
	RequestsPerMinute int  `toml:"requests_per_minute"`
	Burst             int  `toml:"burst"`
}

// StorageConfig holds configuration for the two storage areas.
type StorageConfig struct {
	Internal SurrealConfig `toml:"internal"` // users (SurrealDB)
	Ledger   LedgerConfig  `toml:"ledger"`   // accounts, funds, movements, navs (SQLite)
}

// SurrealConfig holds SurrealDB connection settings.
type SurrealConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// LedgerConfig holds the SQLite ledger settings.
type LedgerConfig struct {
	Path string `toml:"path"`
	// CommissionRateColumn adds accounts.commission_rate during migration.
	CommissionRateColumn bool `toml:"commission_rate_column"`
	BusyTimeout          string `toml:"busy_timeout"`
}

// GetBusyTimeout parses and returns the SQLite busy timeout
func (c *LedgerConfig) GetBusyTimeout() time.Duration {
	d, err := time.ParseDuration(c.BusyTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// AuthConfig holds bearer token and dev-mode settings.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	Issuer      string `toml:"issuer"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
	DevMode     bool   `toml:"dev_mode"`
	DevUserID   string `toml:"dev_user_id"`
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// PerformanceConfig bounds the NAV history window.
type PerformanceConfig struct {
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		VersionFile: ".version",
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 10,
				Burst:             10,
			},
			ReadTimeout:     "30s",
			WriteTimeout:    "60s",
			IdleTimeout:     "60s",
			ShutdownTimeout: "10s",
		},
		Storage: StorageConfig{
			Internal: SurrealConfig{
				Address:   "ws://localhost:8000/rpc",
				Namespace: "fundboard",
				Database:  "fundboard",
				Username:  "root",
				Password:  "root",
			},
			Ledger: LedgerConfig{
				Path:                 "data/ledger.db",
				CommissionRateColumn: true,
				BusyTimeout:          "5s",
			},
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			Issuer:      "fundboard",
			TokenExpiry: "24h",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Outputs:    []string{"console"},
			FilePath:   "./logs/fundboard.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
		Performance: PerformanceConfig{
			DefaultLimit: 12,
			MaxLimit:     365,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// later files override earlier
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FUNDBOARD_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FUNDBOARD_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FUNDBOARD_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if v := os.Getenv("FUNDBOARD_VERSION_FILE"); v != "" {
		config.VersionFile = v
	}

	if origins := os.Getenv("FUNDBOARD_CORS_ORIGINS"); origins != "" {
		var list []string
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				list = append(list, o)
			}
		}
		config.Server.CORSOrigins = list
	}

	if level := os.Getenv("FUNDBOARD_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FUNDBOARD_LEDGER_PATH"); path != "" {
		config.Storage.Ledger.Path = path
	}

	// SurrealDB overrides
	if v := os.Getenv("FUNDBOARD_SURREAL_ADDRESS"); v != "" {
		config.Storage.Internal.Address = v
	}
	if v := os.Getenv("FUNDBOARD_SURREAL_USER"); v != "" {
		config.Storage.Internal.Username = v
	}
	if v := os.Getenv("FUNDBOARD_SURREAL_PASS"); v != "" {
		config.Storage.Internal.Password = v
	}

	// Auth overrides
	if v := os.Getenv("FUNDBOARD_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("FUNDBOARD_DEV_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Auth.DevMode = b
		}
	}
	if v := os.Getenv("FUNDBOARD_DEV_USER_ID"); v != "" {
		config.Auth.DevUserID = v
	}
}

func (c *Config) validate() error {
	if c.Performance.DefaultLimit < 1 {
		c.Performance.DefaultLimit = 12
	}
	if c.Performance.MaxLimit < c.Performance.DefaultLimit {
		c.Performance.MaxLimit = 365
	}
	if c.IsProduction() && c.Auth.DevMode {
		return fmt.Errorf("auth.dev_mode cannot be enabled in production")
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
