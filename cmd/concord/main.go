package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/concordhq/concord/pkg/api"
	"github.com/concordhq/concord/pkg/audit"
	"github.com/concordhq/concord/pkg/config"
	"github.com/concordhq/concord/pkg/directory"
	"github.com/concordhq/concord/pkg/guild"
	"github.com/concordhq/concord/pkg/httputil"
	"github.com/concordhq/concord/pkg/middleware"
	"github.com/concordhq/concord/pkg/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info("Starting concord guild administration service")

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	// Upstream directory backend
	var dir guild.Directory
	var dirCloser interface{ Close() error }
	switch cfg.Directory.Mode {
	case "fixtures":
		src, err := directory.NewFixtureSource(cfg.Directory.FixturesDir)
		if err != nil {
			return fmt.Errorf("failed to load fixtures: %w", err)
		}
		dir = src
		dirCloser = src
		logger.Infof("Directory backend: fixtures (%s)", cfg.Directory.FixturesDir)
	default:
		client, err := directory.NewRESTClient(directory.RESTConfig{
			BaseURL: cfg.Directory.BaseURL,
			Token:   cfg.Directory.Token,
			Timeout: cfg.Directory.Timeout,
		})
		if err != nil {
			return fmt.Errorf("failed to create directory client: %w", err)
		}
		dir = client
		logger.Infof("Directory backend: rest (%s)", cfg.Directory.BaseURL)
	}

	// Audit backend
	auditor := audit.NopLogger()
	var auditDB *sql.DB
	var auditStore audit.Store
	switch cfg.Audit.Backend {
	case "file":
		fl, err := audit.NewFileLogger(audit.FileLoggerConfig{
			BasePath: cfg.Audit.FileDir,
			Rotate:   true,
		})
		if err != nil {
			return fmt.Errorf("failed to open audit log: %w", err)
		}
		auditor = fl
		logger.Infof("Audit backend: file (%s)", cfg.Audit.FileDir)
	case "postgres":
		auditDB, err = sql.Open("postgres", cfg.Audit.PostgresURL)
		if err != nil {
			return fmt.Errorf("failed to open audit database: %w", err)
		}
		if err := auditDB.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to connect to audit database: %w", err)
		}
		dbl, err := audit.NewDBLogger(auditDB)
		if err != nil {
			return fmt.Errorf("failed to initialize audit logger: %w", err)
		}
		auditor = dbl
		auditStore = audit.NewDBStore(dbl)
		logger.Info("Audit backend: postgres")
	default:
		logger.Info("Audit backend: none")
	}

	// Redis for distributed rate limiting (optional)
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable, rate limiting starts in fallback mode")
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	// Public API with middleware chain
	server := api.NewServer(dir, auditor)

	var handler http.Handler = server
	handler = audit.NewMiddleware(auditor, false).Handler(handler)
	if redisClient != nil {
		handler = middleware.NewDistributedRateLimitMiddleware(redisClient).Handler(handler)
	} else {
		handler = middleware.NewRateLimitMiddleware().Handler(handler)
	}
	handler = httputil.ContentTypeMiddleware(handler)
	handler = httputil.MaxBytesMiddleware(int64(cfg.Server.MaxBodyBytes))(handler)
	if len(cfg.Server.CORSOrigins) > 0 {
		handler = httputil.CORSMiddleware(cfg.Server.CORSOrigins)(handler)
	}
	if metrics != nil {
		handler = observability.HTTPMetricsMiddleware(metrics)(handler)
	}
	handler = httputil.LoggingMiddleware(handler)
	handler = httputil.RequestIDMiddleware(handler)
	handler = httputil.RecoveryMiddleware(handler)
	if providers != nil {
		handler = otelhttp.NewHandler(handler, "concord.api")
	}

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Internal health/admin server on a separate port
	healthMux := http.NewServeMux()
	checker := observability.NewHealthChecker(dir, auditDB, redisClient)
	observability.RegisterHealthRoutes(healthMux, checker)
	if metrics != nil {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	if auditStore != nil {
		adminRouter := mux.NewRouter()
		audit.NewHandlers(auditStore).RegisterRoutes(adminRouter)
		healthMux.Handle("/audit/", adminRouter)
	}

	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	go func() {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Health server failed")
		}
	}()

	sm := observability.NewShutdownManager(logger, apiServer, cfg.Server.ShutdownTimeout)
	sm.RegisterShutdownFunc("health server", func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})
	sm.RegisterShutdownFunc("audit logger", func(ctx context.Context) error {
		return auditor.Close()
	})
	if dirCloser != nil {
		sm.RegisterShutdownFunc("directory", func(ctx context.Context) error {
			return dirCloser.Close()
		})
	}
	if auditDB != nil {
		sm.RegisterShutdownFunc("audit database", func(ctx context.Context) error {
			return auditDB.Close()
		})
	}
	if redisClient != nil {
		sm.RegisterShutdownFunc("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}
	if providers != nil {
		sm.RegisterShutdownFunc("telemetry", func(ctx context.Context) error {
			return observability.ShutdownOTel(ctx, providers, logger)
		})
	}

	go func() {
		logger.Infof("API server listening on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("API server failed")
		}
	}()

	return sm.WaitForShutdown()
}
