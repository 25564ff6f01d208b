// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database
	DatabaseURL       string `koanf:"database_url"`
	DBMaxOpenConns    int    `koanf:"db_max_open_conns"`
	DBMaxIdleConns    int    `koanf:"db_max_idle_conns"`
	DBConnMaxLifetime int    `koanf:"db_conn_max_lifetime_seconds"`

	// Redis cache
	RedisURL string `koanf:"redis_url"`

	// API key authentication (shared secret). APIKeyPrevious is optional
	// and accepted alongside APIKey during key rotation.
	APIKey         string `koanf:"api_key"`
	APIKeyPrevious string `koanf:"api_key_previous"`

	// CORS
	AllowedOrigins []string `koanf:"allowed_origins"`

	// Tracing
	TracingEnabled      bool    `koanf:"tracing_enabled"`
	TracingExporter     string  `koanf:"tracing_exporter"`
	TracingOTLPEndpoint string  `koanf:"tracing_otlp_endpoint"`
	TracingSamplingRate float64 `koanf:"tracing_sampling_rate"`
}

// Configuration validation errors.
var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingRedisURL    = errors.New("REDIS_URL is required")
	ErrMissingAPIKey      = errors.New("API_KEY is required")
	ErrInvalidPort        = errors.New("PORT must be a valid integer")
	ErrInvalidPool        = errors.New("database pool sizes must be positive")
)

// Default values for non-secret configuration.
const (
	DefaultPort                = 8080
	DefaultEnv                 = "development"
	DefaultDBMaxOpenConns      = 10
	DefaultDBMaxIdleConns      = 5
	DefaultDBConnMaxLifetime   = 300
	DefaultTracingSamplingRate = 0.1
)

// DefaultAllowedOrigins is the CORS allow-list used when none is configured.
var DefaultAllowedOrigins = []string{"http://localhost:8000"}

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, portErr := getEnvIntOrDefault("PORT", k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	maxOpen, err := getEnvIntOrDefault("DB_MAX_OPEN_CONNS", k.Int("db_max_open_conns"), DefaultDBMaxOpenConns)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	maxIdle, err := getEnvIntOrDefault("DB_MAX_IDLE_CONNS", k.Int("db_max_idle_conns"), DefaultDBMaxIdleConns)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	connLifetime, err := getEnvIntOrDefault("DB_CONN_MAX_LIFETIME_SECONDS", k.Int("db_conn_max_lifetime_seconds"), DefaultDBConnMaxLifetime)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	samplingRate, err := getEnvFloatOrDefault("TRACING_SAMPLING_RATE", k.Float64("tracing_sampling_rate"), DefaultTracingSamplingRate)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	origins := k.Strings("allowed_origins")
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}

	cfg := &Config{
		Port:              port,
		Env:               getEnvOrDefault("ENV", k.String("env"), DefaultEnv),
		DatabaseURL:       getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		DBMaxOpenConns:    maxOpen,
		DBMaxIdleConns:    maxIdle,
		DBConnMaxLifetime: connLifetime,
		RedisURL:          getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		APIKey:            getEnvOrKoanf("API_KEY", k, "api_key"),
		APIKeyPrevious:    getEnvOrKoanf("API_KEY_PREVIOUS", k, "api_key_previous"),
		AllowedOrigins:    origins,

		TracingEnabled:      getEnvBool("TRACING_ENABLED", k.Bool("tracing_enabled")),
		TracingExporter:     getEnvOrDefault("TRACING_EXPORTER", k.String("tracing_exporter"), "otlp-http"),
		TracingOTLPEndpoint: getEnvOrKoanf("TRACING_OTLP_ENDPOINT", k, "tracing_otlp_endpoint"),
		TracingSamplingRate: samplingRate,
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// Validate checks that all mandatory fields are present and consistent.
// Returns a slice of all validation errors found (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if c.RedisURL == "" {
		errs = append(errs, ErrMissingRedisURL)
	}
	if c.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if c.DBMaxOpenConns <= 0 || c.DBMaxIdleConns <= 0 {
		errs = append(errs, ErrInvalidPool)
	}

	return errs
}

// IsProduction returns true when the server runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, ErrInvalidPort)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvBool returns the environment variable as bool if set, otherwise the koanf value.
func getEnvBool(envKey string, koanfVal bool) bool {
	switch os.Getenv(envKey) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return koanfVal
}
