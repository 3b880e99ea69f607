package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	t.Run("creates and registers all metrics", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewMetrics(registry)

		if metrics == nil {
			t.Fatal("NewMetrics returned nil")
		}

		// Verify HTTP metrics are initialized
		if metrics.HTTPRequestsTotal == nil {
			t.Error("HTTPRequestsTotal is nil")
		}
		if metrics.HTTPRequestDuration == nil {
			t.Error("HTTPRequestDuration is nil")
		}
		if metrics.HTTPRequestSize == nil {
			t.Error("HTTPRequestSize is nil")
		}
		if metrics.HTTPResponseSize == nil {
			t.Error("HTTPResponseSize is nil")
		}

		// Verify directory metrics are initialized
		if metrics.DirectoryOperationsTotal == nil {
			t.Error("DirectoryOperationsTotal is nil")
		}
		if metrics.DirectoryOperationDuration == nil {
			t.Error("DirectoryOperationDuration is nil")
		}
		if metrics.DirectoryErrorsTotal == nil {
			t.Error("DirectoryErrorsTotal is nil")
		}

		// Verify projection metrics are initialized
		if metrics.ProjectionsTotal == nil {
			t.Error("ProjectionsTotal is nil")
		}
		if metrics.ProjectionDuration == nil {
			t.Error("ProjectionDuration is nil")
		}
		if metrics.ProjectionNodes == nil {
			t.Error("ProjectionNodes is nil")
		}
		if metrics.ProjectionChannels == nil {
			t.Error("ProjectionChannels is nil")
		}

		// Verify audit metrics are initialized
		if metrics.AuditEventsTotal == nil {
			t.Error("AuditEventsTotal is nil")
		}
		if metrics.AuditWriteErrorsTotal == nil {
			t.Error("AuditWriteErrorsTotal is nil")
		}

		if metrics.RateLimitRejectionsTotal == nil {
			t.Error("RateLimitRejectionsTotal is nil")
		}
		if metrics.DBConnectionsActive == nil {
			t.Error("DBConnectionsActive is nil")
		}
		if metrics.RedisConnectionsActive == nil {
			t.Error("RedisConnectionsActive is nil")
		}
	})

	t.Run("panics on duplicate registration", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		NewMetrics(registry)

		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic on duplicate registration")
			}
		}()
		NewMetrics(registry)
	})
}

func TestMetrics_HTTPCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/guilds", "200").Inc()
	metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/guilds", "200").Inc()
	metrics.HTTPRequestsTotal.WithLabelValues("POST", "/api/guilds/g1/roles", "201").Inc()

	got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/guilds", "200"))
	if got != 2 {
		t.Errorf("GET counter = %v, want 2", got)
	}

	got = testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("POST", "/api/guilds/g1/roles", "201"))
	if got != 1 {
		t.Errorf("POST counter = %v, want 1", got)
	}
}

func TestMetrics_ObserveProjection(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	metrics.ObserveProjection(5*time.Millisecond, 3, 12)
	metrics.ObserveProjection(2*time.Millisecond, 1, 4)

	if got := testutil.ToFloat64(metrics.ProjectionsTotal); got != 2 {
		t.Errorf("ProjectionsTotal = %v, want 2", got)
	}

	count := testutil.CollectAndCount(metrics.ProjectionNodes)
	if count != 1 {
		t.Errorf("ProjectionNodes metric families = %d, want 1", count)
	}
}

func TestMetrics_ObserveDirectoryOperation(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	metrics.ObserveDirectoryOperation("snapshot", "rest", "ok", 30*time.Millisecond)
	metrics.ObserveDirectoryOperation("snapshot", "rest", "error", 10*time.Millisecond)
	metrics.ObserveDirectoryOperation("create_role", "rest", "ok", 20*time.Millisecond)

	got := testutil.ToFloat64(metrics.DirectoryOperationsTotal.WithLabelValues("snapshot", "rest", "ok"))
	if got != 1 {
		t.Errorf("snapshot ok counter = %v, want 1", got)
	}
	got = testutil.ToFloat64(metrics.DirectoryOperationsTotal.WithLabelValues("snapshot", "rest", "error"))
	if got != 1 {
		t.Errorf("snapshot error counter = %v, want 1", got)
	}
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	handler := HTTPMetricsMiddleware(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))

	req := httptest.NewRequest("GET", "/api/guilds", strings.NewReader("body"))
	req.ContentLength = 4
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/guilds", "200"))
	if got != 1 {
		t.Errorf("request counter = %v, want 1", got)
	}
}

func TestHTTPMetricsMiddleware_CapturesStatus(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	handler := HTTPMetricsMiddleware(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest("GET", "/api/guilds/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/guilds/missing", "404"))
	if got != 1 {
		t.Errorf("404 counter = %v, want 1", got)
	}
}

func TestHTTPMetricsMiddleware_CountsRateLimitRejections(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	handler := HTTPMetricsMiddleware(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/guilds/g1/roles", nil))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/guilds", nil))

	if got := testutil.ToFloat64(metrics.RateLimitRejectionsTotal.WithLabelValues("mutation")); got != 1 {
		t.Errorf("mutation rejections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.RateLimitRejectionsTotal.WithLabelValues("read")); got != 1 {
		t.Errorf("read rejections = %v, want 1", got)
	}
}

func TestRegisterMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/guilds", "200").Inc()

	mux := http.NewServeMux()
	RegisterMetricsEndpoint(mux, registry)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "concord_http_requests_total") {
		t.Error("metrics output missing concord_http_requests_total")
	}
}

func TestResponseWriter_DefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.Write([]byte("hello"))

	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200", rw.statusCode)
	}
	if rw.bytesWritten != 5 {
		t.Errorf("bytesWritten = %d, want 5", rw.bytesWritten)
	}
}
