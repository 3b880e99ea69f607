package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics holds OpenTelemetry metric instruments
type OTelMetrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	httpRequestSize     metric.Int64Histogram
	httpResponseSize    metric.Int64Histogram

	// Directory service metrics
	directoryOperations metric.Int64Counter
	directoryDuration   metric.Float64Histogram

	// Projection metrics
	projectionsTotal   metric.Int64Counter
	projectionDuration metric.Float64Histogram
	projectionNodes    metric.Int64Histogram

	// Audit database metrics
	dbConnectionsActive metric.Int64UpDownCounter
	dbConnectionsIdle   metric.Int64UpDownCounter
	dbQueryDuration     metric.Float64Histogram
	dbQueriesTotal      metric.Int64Counter
}

// NewOTelMetrics creates a new OTel metrics instance
func NewOTelMetrics() (*OTelMetrics, error) {
	meter := otel.Meter("github.com/concordhq/concord")

	m := &OTelMetrics{}
	var err error

	// HTTP metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration histogram: %w", err)
	}

	m.httpRequestSize, err = meter.Int64Histogram(
		"http.server.request.size",
		metric.WithDescription("HTTP request size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_size histogram: %w", err)
	}

	m.httpResponseSize, err = meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("HTTP response size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_response_size histogram: %w", err)
	}

	// Directory service metrics
	m.directoryOperations, err = meter.Int64Counter(
		"directory.operations.total",
		metric.WithDescription("Total number of directory service operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory_operations counter: %w", err)
	}

	m.directoryDuration, err = meter.Float64Histogram(
		"directory.operation.duration",
		metric.WithDescription("Directory service operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory_duration histogram: %w", err)
	}

	// Projection metrics
	m.projectionsTotal, err = meter.Int64Counter(
		"projection.builds.total",
		metric.WithDescription("Total number of hierarchy projections built"),
		metric.WithUnit("{projection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create projections_total counter: %w", err)
	}

	m.projectionDuration, err = meter.Float64Histogram(
		"projection.build.duration",
		metric.WithDescription("Hierarchy projection build duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create projection_duration histogram: %w", err)
	}

	m.projectionNodes, err = meter.Int64Histogram(
		"projection.nodes",
		metric.WithDescription("Top-level nodes per projection"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create projection_nodes histogram: %w", err)
	}

	// Audit database metrics
	m.dbConnectionsActive, err = meter.Int64UpDownCounter(
		"db.connections.active",
		metric.WithDescription("Number of active audit database connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create db_connections_active gauge: %w", err)
	}

	m.dbConnectionsIdle, err = meter.Int64UpDownCounter(
		"db.connections.idle",
		metric.WithDescription("Number of idle audit database connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create db_connections_idle gauge: %w", err)
	}

	m.dbQueryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Audit database query duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create db_query_duration histogram: %w", err)
	}

	m.dbQueriesTotal, err = meter.Int64Counter(
		"db.queries.total",
		metric.WithDescription("Total number of audit database queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create db_queries_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request metric
func (m *OTelMetrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration, requestSize, responseSize int64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", statusCode),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if requestSize > 0 {
		m.httpRequestSize.Record(ctx, requestSize, metric.WithAttributes(attrs...))
	}
	if responseSize > 0 {
		m.httpResponseSize.Record(ctx, responseSize, metric.WithAttributes(attrs...))
	}
}

// RecordDirectoryOperation records one directory service call
func (m *OTelMetrics) RecordDirectoryOperation(ctx context.Context, operation, backend string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("directory.operation", operation),
		attribute.String("directory.backend", backend),
		attribute.Bool("error", err != nil),
	}

	m.directoryOperations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.directoryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordProjection records one hierarchy projection build
func (m *OTelMetrics) RecordProjection(ctx context.Context, duration time.Duration, nodes int) {
	m.projectionsTotal.Add(ctx, 1)
	m.projectionDuration.Record(ctx, duration.Seconds())
	m.projectionNodes.Record(ctx, int64(nodes))
}

// RecordDBQuery records an audit database query metric
func (m *OTelMetrics) RecordDBQuery(ctx context.Context, operation string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("db.operation", operation),
		attribute.Bool("error", err != nil),
	}

	m.dbQueriesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.dbQueryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// UpdateDBConnectionStats updates audit database connection pool statistics
func (m *OTelMetrics) UpdateDBConnectionStats(ctx context.Context, active, idle int) {
	m.dbConnectionsActive.Add(ctx, int64(active))
	m.dbConnectionsIdle.Add(ctx, int64(idle))
}
