package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/concordhq/concord/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Upstream directory configuration
	Directory DirectoryConfig

	// Audit trail configuration
	Audit AuditConfig

	// Redis configuration (distributed rate limiting)
	Redis RedisConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string

	// CORS origins for the public API; empty disables CORS handling.
	CORSOrigins []string

	// Request body cap in bytes.
	MaxBodyBytes int
}

// DirectoryConfig selects and configures the upstream directory backend.
// Mode "rest" talks to the real directory service; "fixtures" serves
// snapshots from local files and is meant for development and tests.
type DirectoryConfig struct {
	Mode        string
	BaseURL     string
	Token       string
	Timeout     time.Duration
	FixturesDir string
}

// AuditConfig configures where audit events are persisted. Backend "none"
// disables the trail entirely; "file" appends JSON lines; "postgres" writes
// to the audit database. Retention only applies to the postgres backend.
type AuditConfig struct {
	Backend     string
	FileDir     string
	PostgresURL string
	Retention   time.Duration
}

// RedisConfig holds the optional Redis connection used for distributed rate
// limiting. An empty URL means rate limiting stays in-process.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Directory:     loadDirectoryConfig(),
		Audit:         loadAuditConfig(),
		Redis:         loadRedisConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("CONCORD_HOST", "0.0.0.0"),
		Port:            getEnv("CONCORD_PORT", "8080"),
		ReadTimeout:     getEnvDuration("CONCORD_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("CONCORD_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("CONCORD_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("CONCORD_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("CONCORD_HEALTH_PORT", "9090"),
		CORSOrigins:     splitCSV(getEnv("CONCORD_CORS_ORIGINS", "")),
		MaxBodyBytes:    getEnvInt("CONCORD_MAX_BODY_BYTES", 1<<20),
	}
}

// splitCSV splits a comma-separated value, trimming whitespace and dropping
// empty entries. An empty input yields nil.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadDirectoryConfig loads upstream directory configuration from environment
func loadDirectoryConfig() DirectoryConfig {
	return DirectoryConfig{
		Mode:        getEnv("CONCORD_DIRECTORY_MODE", "rest"),
		BaseURL:     getEnv("CONCORD_DIRECTORY_URL", ""),
		Token:       getEnv("CONCORD_DIRECTORY_TOKEN", ""),
		Timeout:     getEnvDuration("CONCORD_DIRECTORY_TIMEOUT", 10*time.Second),
		FixturesDir: getEnv("CONCORD_FIXTURES_DIR", ""),
	}
}

// loadAuditConfig loads audit trail configuration from environment
func loadAuditConfig() AuditConfig {
	return AuditConfig{
		Backend:     getEnv("CONCORD_AUDIT_BACKEND", "none"),
		FileDir:     getEnv("CONCORD_AUDIT_DIR", ""),
		PostgresURL: getEnv("CONCORD_AUDIT_POSTGRES_URL", ""),
		Retention:   getEnvDuration("CONCORD_AUDIT_RETENTION", 90*24*time.Hour),
	}
}

// loadRedisConfig loads Redis configuration from environment
func loadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:      getEnv("CONCORD_REDIS_URL", ""),
		Password: getEnv("CONCORD_REDIS_PASSWORD", ""),
		DB:       getEnvInt("CONCORD_REDIS_DB", 0),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("CONCORD_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("CONCORD_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("CONCORD_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("CONCORD_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("CONCORD_OTEL_SERVICE_NAME", "concord"),
		OTelServiceVersion: getEnv("CONCORD_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("CONCORD_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}

	// Validate directory config based on mode
	switch c.Directory.Mode {
	case "rest":
		if c.Directory.BaseURL == "" {
			return fmt.Errorf("directory URL is required for rest mode")
		}
	case "fixtures":
		if c.Directory.FixturesDir == "" {
			return fmt.Errorf("fixtures directory is required for fixtures mode")
		}
	default:
		return fmt.Errorf("invalid directory mode: %s (must be rest or fixtures)", c.Directory.Mode)
	}

	// Validate audit config based on backend
	switch c.Audit.Backend {
	case "none":
	case "file":
		if c.Audit.FileDir == "" {
			return fmt.Errorf("audit directory is required for file backend")
		}
	case "postgres":
		if c.Audit.PostgresURL == "" {
			return fmt.Errorf("audit postgres URL is required for postgres backend")
		}
	default:
		return fmt.Errorf("invalid audit backend: %s (must be none, file, or postgres)", c.Audit.Backend)
	}
	if c.Audit.Retention <= 0 {
		return fmt.Errorf("audit retention must be positive")
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
