// Package observability provides structured logging, Prometheus metrics,
// health checks, and OpenTelemetry tracing for the service.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.Info("server started")
//
// Context-aware logging:
//
//	logger.WithField("guild_id", guildID).WithError(err).Error("snapshot failed")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.DirectoryOperationsTotal.WithLabelValues("snapshot", "rest", "ok").Inc()
//	metrics.ObserveProjection(elapsed, len(proj.Nodes), channelCount)
//
// # Health Checks
//
// Configure health checker:
//
//	checker := observability.NewHealthChecker(directory, auditDB, redisClient)
//	observability.RegisterHealthRoutes(healthMux, checker)
//
// The directory is the only hard readiness dependency; audit storage and
// Redis only degrade the reported status.
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "concord-api",
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Related Packages
//
//   - pkg/config: observability configuration
//   - pkg/httputil: request ID middleware feeding the logger
package observability
