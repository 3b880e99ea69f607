package audit

import (
	"net/http"
	"time"
)

// Middleware provides HTTP middleware for audit logging
type Middleware struct {
	logger         Logger
	logAllRequests bool // If false, only log mutations and errors
}

// NewMiddleware creates a new audit middleware
func NewMiddleware(logger Logger, logAllRequests bool) *Middleware {
	return &Middleware{
		logger:         logger,
		logAllRequests: logAllRequests,
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Handler wraps an HTTP handler with audit logging
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		// Make the logger available to handlers downstream
		ctx := WithLogger(r.Context(), m.logger)

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r.WithContext(ctx))

		duration := time.Since(startTime)

		shouldLog := m.logAllRequests || m.shouldLogRequest(r, wrapped.statusCode)

		if shouldLog {
			// Never fail the request over an audit write
			_ = m.logger.LogHTTPRequest(ctx, r, wrapped.statusCode, duration, nil)
		}
	})
}

// shouldLogRequest determines if a request should be logged
func (m *Middleware) shouldLogRequest(r *http.Request, statusCode int) bool {
	// Always log mutations (POST, PUT, PATCH, DELETE)
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return true
	}

	// Always log errors
	if statusCode >= 400 {
		return true
	}

	return false
}
