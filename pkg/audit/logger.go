package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/concordhq/concord/pkg/httputil"
)

// Logger is the interface for audit logging
type Logger interface {
	// Log logs an audit event
	Log(ctx context.Context, event *AuditEvent) error

	// LogMutation logs a successful mutation against a guild resource
	LogMutation(ctx context.Context, eventType EventType, guildID string, resourceType ResourceType, resourceID string, changes *ChangeDetails, message string) error

	// LogMutationFailure logs a failed or rejected mutation
	LogMutationFailure(ctx context.Context, eventType EventType, guildID string, resourceType ResourceType, resourceID string, status EventStatus, err error) error

	// LogHTTPRequest logs an HTTP request (for middleware)
	LogHTTPRequest(ctx context.Context, r *http.Request, statusCode int, duration time.Duration, err error) error

	// Close closes the logger and flushes any buffered logs
	Close() error
}

// contextKey is the type for context keys
type contextKey string

// AuditLoggerKey is the context key for the audit logger
const AuditLoggerKey contextKey = "audit_logger"

// WithLogger adds an audit logger to the context
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, AuditLoggerKey, logger)
}

// FromContext retrieves the audit logger from context
func FromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(AuditLoggerKey).(Logger); ok {
		return logger
	}
	// Return a no-op logger if none is set
	return NopLogger()
}

// NopLogger returns a logger that discards everything. Used when auditing is
// disabled in config.
func NopLogger() Logger {
	return &noOpLogger{}
}

type noOpLogger struct{}

func (l *noOpLogger) Log(ctx context.Context, event *AuditEvent) error {
	return nil
}

func (l *noOpLogger) LogMutation(ctx context.Context, eventType EventType, guildID string, resourceType ResourceType, resourceID string, changes *ChangeDetails, message string) error {
	return nil
}

func (l *noOpLogger) LogMutationFailure(ctx context.Context, eventType EventType, guildID string, resourceType ResourceType, resourceID string, status EventStatus, err error) error {
	return nil
}

func (l *noOpLogger) LogHTTPRequest(ctx context.Context, r *http.Request, statusCode int, duration time.Duration, err error) error {
	return nil
}

func (l *noOpLogger) Close() error {
	return nil
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}

// buildBaseEvent creates a base audit event with common fields populated
func buildBaseEvent(ctx context.Context, r *http.Request, eventType EventType, status EventStatus) *AuditEvent {
	event := &AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
		RequestID: httputil.RequestID(ctx),
		Metadata:  make(map[string]interface{}),
	}

	if r != nil {
		event.IPAddress = getClientIP(r)
		event.UserAgent = r.UserAgent()
		event.Method = r.Method
		event.Path = r.URL.Path
	}

	return event
}

// buildMutationEvent populates resource fields on a base event
func buildMutationEvent(ctx context.Context, eventType EventType, guildID string, resourceType ResourceType, resourceID string, status EventStatus) *AuditEvent {
	event := buildBaseEvent(ctx, nil, eventType, status)
	event.GuildID = guildID
	event.ResourceType = resourceType
	event.ResourceID = resourceID
	return event
}
