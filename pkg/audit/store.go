package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store provides methods for querying and managing audit logs
type Store interface {
	// Search searches audit logs based on filters
	Search(ctx context.Context, filter SearchFilter) ([]*AuditEvent, error)

	// Get retrieves a specific audit event by ID
	Get(ctx context.Context, id int64) (*AuditEvent, error)

	// GetStats retrieves audit log statistics
	GetStats(ctx context.Context, startTime, endTime *time.Time) (*AuditStats, error)

	// Export exports audit logs in the specified format
	Export(ctx context.Context, filter SearchFilter, format ExportFormat) ([]byte, error)

	// Cleanup removes audit logs older than the retention period
	Cleanup(ctx context.Context, policy RetentionPolicy) (int64, error)
}

// DBStore implements Store interface using PostgreSQL
type DBStore struct {
	logger *DBLogger
}

// NewDBStore creates a new database-backed audit store
func NewDBStore(logger *DBLogger) *DBStore {
	return &DBStore{
		logger: logger,
	}
}

// Search searches audit logs based on filters
func (s *DBStore) Search(ctx context.Context, filter SearchFilter) ([]*AuditEvent, error) {
	return s.logger.Search(ctx, filter)
}

// Get retrieves a specific audit event by ID
func (s *DBStore) Get(ctx context.Context, id int64) (*AuditEvent, error) {
	query := `
		SELECT
			id, timestamp, event_type, status,
			guild_id, resource_type, resource_id, channel_id,
			ip_address, user_agent, request_id,
			method, path, status_code,
			message, error_message, metadata, changes
		FROM audit_events
		WHERE id = $1
	`

	rows, err := s.logger.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	event := &AuditEvent{Metadata: make(map[string]interface{})}
	var metadataJSON, changesJSON []byte

	if err := rows.Scan(
		&event.ID, &event.Timestamp, &event.EventType, &event.Status,
		&event.GuildID, &event.ResourceType, &event.ResourceID, &event.ChannelID,
		&event.IPAddress, &event.UserAgent, &event.RequestID,
		&event.Method, &event.Path, &event.StatusCode,
		&event.Message, &event.ErrorMessage, &metadataJSON, &changesJSON,
	); err != nil {
		return nil, fmt.Errorf("failed to scan audit event: %w", err)
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	if len(changesJSON) > 0 {
		event.Changes = &ChangeDetails{}
		if err := json.Unmarshal(changesJSON, event.Changes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal changes: %w", err)
		}
	}

	return event, nil
}

// GetStats retrieves audit log statistics
func (s *DBStore) GetStats(ctx context.Context, startTime, endTime *time.Time) (*AuditStats, error) {
	return s.logger.GetStats(ctx, startTime, endTime)
}

// Export exports audit logs in the specified format
func (s *DBStore) Export(ctx context.Context, filter SearchFilter, format ExportFormat) ([]byte, error) {
	// Get all events matching the filter
	events, err := s.logger.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	switch format {
	case ExportFormatJSON:
		return exportJSON(events)
	case ExportFormatCSV:
		return exportCSV(events)
	case ExportFormatNDJSON:
		return exportNDJSON(events)
	default:
		return exportJSON(events)
	}
}

// Cleanup removes audit logs older than the retention period
func (s *DBStore) Cleanup(ctx context.Context, policy RetentionPolicy) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -policy.RetentionDays)

	result, err := s.logger.db.ExecContext(ctx, "DELETE FROM audit_events WHERE timestamp < $1", cutoffDate)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return rowsAffected, nil
}
