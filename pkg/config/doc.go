// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	CONCORD_HOST="0.0.0.0"
//	CONCORD_PORT="8080"
//	CONCORD_HEALTH_PORT="9090"
//	CONCORD_READ_TIMEOUT="15s"
//	CONCORD_WRITE_TIMEOUT="15s"
//	CONCORD_CORS_ORIGINS="https://admin.example.com"  # comma-separated; empty disables CORS
//	CONCORD_MAX_BODY_BYTES="1048576"
//
// Directory settings:
//
//	CONCORD_DIRECTORY_MODE="rest"  # rest, fixtures
//	CONCORD_DIRECTORY_URL="https://directory.internal:8443"
//	CONCORD_DIRECTORY_TOKEN="..."
//	CONCORD_FIXTURES_DIR="/var/lib/concord/fixtures"
//
// Audit settings:
//
//	CONCORD_AUDIT_BACKEND="postgres"  # none, file, postgres
//	CONCORD_AUDIT_DIR="/var/log/concord/audit"
//	CONCORD_AUDIT_POSTGRES_URL="postgres://localhost/concord_audit"
//	CONCORD_AUDIT_RETENTION="2160h"
//
// Redis settings (distributed rate limiting; optional):
//
//	CONCORD_REDIS_URL="localhost:6379"
//	CONCORD_REDIS_DB="0"
//
// Observability settings:
//
//	CONCORD_LOG_LEVEL="info"  # debug, info, warn, error
//	CONCORD_METRICS_ENABLED="true"
//	CONCORD_OTEL_ENABLED="true"
//	CONCORD_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Directory: %s\n", cfg.Directory.Mode)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/directory: Uses directory configuration
//   - pkg/audit: Uses audit configuration
//   - pkg/observability: Uses observability configuration
package config
