// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// StorageConfig contains database configuration
type StorageConfig struct {
	Type           string        `mapstructure:"type"` // sqlite, postgres
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	Path           string        `mapstructure:"path"`
	SSLMode        string        `mapstructure:"ssl_mode"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port          int           `mapstructure:"port"`
	Host          string        `mapstructure:"host"`
	CORSOrigin    string        `mapstructure:"cors_origin"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	EnableMetrics bool          `mapstructure:"enable_metrics"`
}

// DashboardConfig configures the terminal dashboard
type DashboardConfig struct {
	APIURL       string        `mapstructure:"api_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	RecentLimit  int           `mapstructure:"recent_limit"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
	Output string `mapstructure:"output"` // stdout, stderr, file
	File   string `mapstructure:"file"`
}

// envBindings maps config keys to the environment variables that override them
var envBindings = map[string][]string{
	"storage.type":            {"DB_TYPE"},
	"storage.host":            {"DB_HOST"},
	"storage.port":            {"DB_PORT"},
	"storage.user":            {"DB_USER"},
	"storage.password":        {"DB_PASSWORD"},
	"storage.name":            {"DB_NAME"},
	"storage.path":            {"DB_PATH"},
	"storage.ssl_mode":        {"DB_SSLMODE"},
	"storage.max_connections": {"DB_MAX_CONNECTIONS"},
	"server.port":             {"PORT", "SERVER_PORT"},
	"server.host":             {"SERVER_HOST"},
	"server.cors_origin":      {"CORS_ORIGIN"},
	"server.enable_metrics":   {"ENABLE_METRICS"},
	"logging.level":           {"LOG_LEVEL"},
	"logging.format":          {"LOG_FORMAT"},
	"dashboard.api_url":       {"API_URL"},
	"dashboard.poll_interval": {"POLL_INTERVAL"},
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./internal/config")
	}

	v.SetEnvPrefix("STEELFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "steelflow-monitor")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	// Storage defaults
	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.host", "localhost")
	v.SetDefault("storage.port", 5432)
	v.SetDefault("storage.user", "root")
	v.SetDefault("storage.password", "")
	v.SetDefault("storage.name", "steelflow")
	v.SetDefault("storage.path", "./data/steelflow.db")
	v.SetDefault("storage.ssl_mode", "disable")
	v.SetDefault("storage.max_connections", 10)
	v.SetDefault("storage.max_idle_time", "15m")

	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.cors_origin", "http://localhost:8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.enable_metrics", true)

	// Dashboard defaults
	v.SetDefault("dashboard.api_url", "http://localhost:3000/api")
	v.SetDefault("dashboard.poll_interval", "30s")
	v.SetDefault("dashboard.recent_limit", 7)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Type) {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for sqlite")
		}
	case "postgres", "postgresql":
		if c.Storage.Host == "" || c.Storage.Name == "" {
			return fmt.Errorf("storage host and database name are required for postgres")
		}
	default:
		return fmt.Errorf("unsupported storage type %q", c.Storage.Type)
	}
	if c.Storage.MaxConnections <= 0 {
		return fmt.Errorf("storage max connections must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", c.Server.Port)
	}
	if c.Dashboard.PollInterval <= 0 {
		return fmt.Errorf("dashboard poll interval must be positive")
	}
	return nil
}

// Address returns the host:port the HTTP server listens on
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
