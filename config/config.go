// Package config loads server configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Pagination PaginationConfig `mapstructure:"pagination"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig selects the storage backend. For sqlite the DSN is a file
// path; for postgres it is a connection URL.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig enables HTTP basic auth on the contacts API when both fields
// are set.
type AuthConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// Enabled reports whether credentials are configured.
func (c AuthConfig) Enabled() bool {
	return c.User != "" || c.Password != ""
}

// PaginationConfig holds list defaults.
type PaginationConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
}

// Load reads configuration from file (if configPath is non-empty) and the
// environment. Variables use the CONTACTBOOK_ prefix (CONTACTBOOK_SERVER_PORT);
// PORT, DB_PATH, LOG_LEVEL, AUTH_USER and AUTH_PASS are honoured as well.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "./data/contacts.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("auth.user", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("pagination.default_limit", 10)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// A missing file falls back to defaults.
		}
	}

	v.SetEnvPrefix("CONTACTBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short names kept from earlier deployments. BindEnv checks them in order,
	// so the prefixed variable wins.
	legacy := map[string]string{
		"server.port":   "PORT",
		"database.dsn":  "DB_PATH",
		"log.level":     "LOG_LEVEL",
		"auth.user":     "AUTH_USER",
		"auth.password": "AUTH_PASS",
	}
	for key, env := range legacy {
		prefixed := "CONTACTBOOK_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be one of: %s, %s", DriverSQLite, DriverPostgres)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Pagination.DefaultLimit <= 0 {
		return fmt.Errorf("pagination.default_limit must be positive")
	}
	return nil
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg LogConfig) *slog.Logger {
	return NewLogger(os.Stdout, cfg)
}

// NewLogger is SetupLogger with an explicit destination.
func NewLogger(w io.Writer, cfg LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
