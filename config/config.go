// Package config provides centralized configuration for the storefront client
// with validation, type safety, and clear documentation for operators.
//
// Configuration Sources (12-factor app principles):
//  1. Default values (hardcoded)
//  2. .env file (local development via godotenv)
//  3. Environment variables (runtime)
//
// Usage:
//
//	cfg := config.Load()
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	// Use cfg.API.BaseURL, cfg.Tracing.Endpoint, etc.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the storefront client.
type Config struct {
	Service   ServiceConfig   // Client identity (name, version, env)
	API       APIConfig       // Storefront backend endpoint settings
	Tracing   TracingConfig   // OpenTelemetry configuration
	Profiling ProfilingConfig // Pyroscope continuous profiling
	Logging   LoggingConfig   // Structured logging (Zap)
	Metrics   MetricsConfig   // Prometheus metrics
}

// ServiceConfig identifies this client instance.
type ServiceConfig struct {
	Name    string // Client name - from SERVICE_NAME env (default: "storefront-client")
	Version string // Client version (optional) - from VERSION env
	Env     string // Environment (dev/staging/production) - from ENV env
}

// APIConfig defines how the client reaches the storefront backend.
type APIConfig struct {
	// BaseURL is the backend origin, e.g. "https://api.velora.shop" -
	// from STOREFRONT_API_URL env.
	BaseURL string
	// Timeout bounds each request. 0 disables the client-side timeout
	// (the backend contract has no timeout of its own). From API_TIMEOUT
	// env as a Go duration (default: 10s).
	Timeout time.Duration
	// UserAgent sent on every request - from API_USER_AGENT env.
	UserAgent string
	// Debug enables request/response dumping on the HTTP client - from
	// API_DEBUG env (default: false). Never enable in production: bodies
	// contain credentials.
	Debug bool
}

// TracingConfig defines OpenTelemetry tracing configuration.
type TracingConfig struct {
	Enabled            bool    // Enable tracing (default: false) - from TRACING_ENABLED env
	Endpoint           string  // OTel Collector endpoint - from OTEL_COLLECTOR_ENDPOINT env
	SampleRate         float64 // Trace sampling rate (0.0-1.0) - from OTEL_SAMPLE_RATE env
	ServiceName        string  // Service name for traces (defaults to ServiceConfig.Name)
	MaxExportBatchSize int     // Max spans per batch (default: 512)
}

// ProfilingConfig defines Pyroscope continuous profiling configuration.
type ProfilingConfig struct {
	Enabled     bool   // Enable profiling (default: false) - from PROFILING_ENABLED env
	Endpoint    string // Pyroscope endpoint - from PYROSCOPE_ENDPOINT env
	ServiceName string // Service name for profiling (defaults to ServiceConfig.Name)
}

// LoggingConfig defines structured logging configuration.
type LoggingConfig struct {
	Level  string // Log level: debug, info, warn, error (default: "info") - from LOG_LEVEL env
	Format string // Log format: json, console (default: "json") - from LOG_FORMAT env
}

// MetricsConfig defines Prometheus metrics exposure for the demo CLI.
type MetricsConfig struct {
	Enabled bool   // Enable the debug/metrics listener (default: false) - from METRICS_ENABLED env
	Port    string // Debug listener port (default: "9090") - from METRICS_PORT env
}

// Load reads configuration from environment variables with defaults.
// It automatically loads a .env file if present (for local development).
//
// Priority: .env file < environment variables.
func Load() *Config {
	// godotenv.Load() fails silently if .env doesn't exist - fine in production
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "storefront-client"),
			Version: getEnv("VERSION", "dev"),
			Env:     getEnv("ENV", "development"),
		},
		API: APIConfig{
			BaseURL:   getEnv("STOREFRONT_API_URL", "http://localhost:8080"),
			Timeout:   getEnvDuration("API_TIMEOUT", 10*time.Second),
			UserAgent: getEnv("API_USER_AGENT", "storefront-go/"+getEnv("VERSION", "dev")),
			Debug:     getEnvBool("API_DEBUG", false),
		},
		Tracing: TracingConfig{
			Enabled:            getEnvBool("TRACING_ENABLED", false),
			Endpoint:           getEnv("OTEL_COLLECTOR_ENDPOINT", "localhost:4318"),
			SampleRate:         getEnvFloat("OTEL_SAMPLE_RATE", 1.0),
			ServiceName:        getEnv("SERVICE_NAME", "storefront-client"),
			MaxExportBatchSize: getEnvInt("OTEL_BATCH_SIZE", 512),
		},
		Profiling: ProfilingConfig{
			Enabled:     getEnvBool("PROFILING_ENABLED", false),
			Endpoint:    getEnv("PYROSCOPE_ENDPOINT", "http://localhost:4040"),
			ServiceName: getEnv("SERVICE_NAME", "storefront-client"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", false),
			Port:    getEnv("METRICS_PORT", "9090"),
		},
	}
}

// Validate performs comprehensive validation of all configuration fields.
// Returns detailed error messages for troubleshooting.
func (c *Config) Validate() error {
	var errors []string

	if c.Service.Name == "" {
		errors = append(errors, "SERVICE_NAME is required (e.g., 'storefront-client')")
	}
	validEnvs := []string{"development", "dev", "staging", "stage", "production", "prod"}
	if !contains(validEnvs, c.Service.Env) {
		errors = append(errors, fmt.Sprintf("ENV must be one of %v, got: %s", validEnvs, c.Service.Env))
	}

	if c.API.BaseURL == "" {
		errors = append(errors, "STOREFRONT_API_URL is required (e.g., 'https://api.velora.shop')")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("STOREFRONT_API_URL must be an absolute URL, got: %s", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		errors = append(errors, fmt.Sprintf("API_TIMEOUT must not be negative, got: %s", c.API.Timeout))
	}

	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			errors = append(errors, "OTEL_COLLECTOR_ENDPOINT is required when tracing is enabled")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
			errors = append(errors, fmt.Sprintf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got: %.2f", c.Tracing.SampleRate))
		}
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		errors = append(errors, "PYROSCOPE_ENDPOINT is required when profiling is enabled")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of %v, got: %s", validLogLevels, c.Logging.Level))
	}
	validLogFormats := []string{"json", "console"}
	if !contains(validLogFormats, strings.ToLower(c.Logging.Format)) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of %v, got: %s", validLogFormats, c.Logging.Format))
	}

	if c.Metrics.Enabled {
		if _, err := strconv.Atoi(c.Metrics.Port); err != nil {
			errors = append(errors, fmt.Sprintf("METRICS_PORT must be a valid number, got: %s", c.Metrics.Port))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Service.Env)
	return env == "development" || env == "dev"
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Service.Env)
	return env == "production" || env == "prod"
}

// Helper functions for environment variable parsing

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool reads a boolean environment variable with a default fallback.
// Accepts: "true", "1", "yes" for true | "false", "0", "no" for false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt reads an integer environment variable with a default fallback.
// Returns default if parsing fails.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat reads a float64 environment variable with a default fallback.
// Returns default if parsing fails.
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvDuration reads a Go duration environment variable (e.g., "10s", "1m").
// Returns default on invalid or negative values (silent fallback for startup
// safety); "0" is accepted and disables the timeout.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return defaultValue
	}
	return d
}

// contains checks if a string slice contains a specific value.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
