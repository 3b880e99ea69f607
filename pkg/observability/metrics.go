package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Directory service metrics
	DirectoryOperationsTotal   *prometheus.CounterVec
	DirectoryOperationDuration *prometheus.HistogramVec
	DirectoryErrorsTotal       *prometheus.CounterVec

	// Projection metrics
	ProjectionsTotal   prometheus.Counter
	ProjectionDuration prometheus.Histogram
	ProjectionNodes    prometheus.Histogram
	ProjectionChannels prometheus.Histogram

	// Audit metrics
	AuditEventsTotal      *prometheus.CounterVec
	AuditWriteErrorsTotal *prometheus.CounterVec

	// Rate limit metrics
	RateLimitRejectionsTotal *prometheus.CounterVec

	// Audit database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	// Redis metrics
	RedisConnectionsActive prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concord_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "concord_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "concord_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "concord_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		// Directory service metrics
		DirectoryOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concord_directory_operations_total",
				Help: "Total number of directory service operations",
			},
			[]string{"operation", "backend", "status"},
		),
		DirectoryOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "concord_directory_operation_duration_seconds",
				Help:    "Directory service operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "backend"},
		),
		DirectoryErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concord_directory_errors_total",
				Help: "Total number of directory service errors",
			},
			[]string{"operation", "backend", "error_type"},
		),

		// Projection metrics
		ProjectionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "concord_projections_total",
				Help: "Total number of hierarchy projections built",
			},
		),
		ProjectionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "concord_projection_duration_seconds",
				Help:    "Hierarchy projection build duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
		),
		ProjectionNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "concord_projection_nodes",
				Help:    "Top-level nodes per projection",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
		ProjectionChannels: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "concord_projection_channels",
				Help:    "Channels per projection",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),

		// Audit metrics
		AuditEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concord_audit_events_total",
				Help: "Total number of audit events recorded",
			},
			[]string{"event_type", "status"},
		),
		AuditWriteErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concord_audit_write_errors_total",
				Help: "Total number of audit backend write failures",
			},
			[]string{"backend"},
		),

		// Rate limit metrics
		RateLimitRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concord_ratelimit_rejections_total",
				Help: "Total number of rate limited requests",
			},
			[]string{"budget"},
		),

		// Audit database metrics
		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "concord_db_connections_active",
				Help: "Number of active audit database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "concord_db_connections_idle",
				Help: "Number of idle audit database connections",
			},
		),

		// Redis metrics
		RedisConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "concord_redis_connections_active",
				Help: "Number of active Redis connections",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestSize,
		m.HTTPResponseSize,
		m.DirectoryOperationsTotal,
		m.DirectoryOperationDuration,
		m.DirectoryErrorsTotal,
		m.ProjectionsTotal,
		m.ProjectionDuration,
		m.ProjectionNodes,
		m.ProjectionChannels,
		m.AuditEventsTotal,
		m.AuditWriteErrorsTotal,
		m.RateLimitRejectionsTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
		m.RedisConnectionsActive,
	)

	return m
}

// ObserveProjection records one hierarchy projection build.
func (m *Metrics) ObserveProjection(duration time.Duration, nodes, channels int) {
	m.ProjectionsTotal.Inc()
	m.ProjectionDuration.Observe(duration.Seconds())
	m.ProjectionNodes.Observe(float64(nodes))
	m.ProjectionChannels.Observe(float64(channels))
}

// ObserveDirectoryOperation records one directory call outcome.
func (m *Metrics) ObserveDirectoryOperation(operation, backend, status string, duration time.Duration) {
	m.DirectoryOperationsTotal.WithLabelValues(operation, backend, status).Inc()
	m.DirectoryOperationDuration.WithLabelValues(operation, backend).Observe(duration.Seconds())
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status and size
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			// Record request size
			if r.ContentLength > 0 {
				metrics.HTTPRequestSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(r.ContentLength))
			}

			// Serve the request
			next.ServeHTTP(rw, r)

			// Record metrics
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(rw.bytesWritten))

			if rw.statusCode == http.StatusTooManyRequests {
				budget := "mutation"
				if r.Method == http.MethodGet || r.Method == http.MethodHead {
					budget = "read"
				}
				metrics.RateLimitRejectionsTotal.WithLabelValues(budget).Inc()
			}
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
