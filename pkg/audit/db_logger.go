package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"
)

// DBLogger implements audit logging to PostgreSQL database
type DBLogger struct {
	db *sql.DB
}

// NewDBLogger creates a new database-based audit logger
func NewDBLogger(db *sql.DB) (*DBLogger, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	logger := &DBLogger{
		db: db,
	}

	// Ensure the audit_events table exists
	if err := logger.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure audit_events table: %w", err)
	}

	return logger, nil
}

// ensureTable creates the audit_events table if it doesn't exist
func (l *DBLogger) ensureTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id BIGSERIAL PRIMARY KEY,
		timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
		event_type VARCHAR(100) NOT NULL,
		status VARCHAR(20) NOT NULL,
		guild_id VARCHAR(64),
		resource_type VARCHAR(50),
		resource_id VARCHAR(64),
		channel_id VARCHAR(64),
		ip_address VARCHAR(45),
		user_agent TEXT,
		request_id VARCHAR(100),
		method VARCHAR(10),
		path TEXT,
		status_code INTEGER,
		message TEXT,
		error_message TEXT,
		metadata JSONB,
		changes JSONB,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	-- Create indexes for common query patterns
	CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_audit_events_event_type ON audit_events(event_type);
	CREATE INDEX IF NOT EXISTS idx_audit_events_guild_id ON audit_events(guild_id);
	CREATE INDEX IF NOT EXISTS idx_audit_events_resource ON audit_events(resource_type, resource_id);
	CREATE INDEX IF NOT EXISTS idx_audit_events_status ON audit_events(status);
	`

	_, err := l.db.Exec(query)
	return err
}

// Log logs an audit event to the database
func (l *DBLogger) Log(ctx context.Context, event *AuditEvent) error {
	// Serialize metadata and changes to JSON
	var metadataJSON, changesJSON []byte
	var err error

	if event.Metadata != nil {
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	if event.Changes != nil {
		changesJSON, err = json.Marshal(event.Changes)
		if err != nil {
			return fmt.Errorf("failed to marshal changes: %w", err)
		}
	}

	query := `
		INSERT INTO audit_events (
			timestamp, event_type, status,
			guild_id, resource_type, resource_id, channel_id,
			ip_address, user_agent, request_id,
			method, path, status_code,
			message, error_message, metadata, changes
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10,
			$11, $12, $13,
			$14, $15, $16, $17
		) RETURNING id
	`

	err = l.db.QueryRowContext(ctx, query,
		event.Timestamp, event.EventType, event.Status,
		event.GuildID, event.ResourceType, event.ResourceID, event.ChannelID,
		event.IPAddress, event.UserAgent, event.RequestID,
		event.Method, event.Path, event.StatusCode,
		event.Message, event.ErrorMessage, metadataJSON, changesJSON,
	).Scan(&event.ID)

	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}

	return nil
}

// LogMutation logs a successful mutation against a guild resource
func (l *DBLogger) LogMutation(ctx context.Context, eventType EventType, guildID string, resourceType ResourceType, resourceID string, changes *ChangeDetails, message string) error {
	event := buildMutationEvent(ctx, eventType, guildID, resourceType, resourceID, EventStatusSuccess)
	event.Changes = changes
	event.Message = message

	return l.Log(ctx, event)
}

// LogMutationFailure logs a failed or rejected mutation
func (l *DBLogger) LogMutationFailure(ctx context.Context, eventType EventType, guildID string, resourceType ResourceType, resourceID string, status EventStatus, err error) error {
	event := buildMutationEvent(ctx, eventType, guildID, resourceType, resourceID, status)
	if err != nil {
		event.ErrorMessage = err.Error()
	}

	return l.Log(ctx, event)
}

// LogHTTPRequest logs an HTTP request
func (l *DBLogger) LogHTTPRequest(ctx context.Context, r *http.Request, statusCode int, duration time.Duration, err error) error {
	eventType := EventTypeAccessGuildRead
	status := EventStatusSuccess

	if statusCode >= 400 {
		status = EventStatusFailure
	}

	event := buildBaseEvent(ctx, r, eventType, status)
	event.StatusCode = statusCode
	event.Metadata["duration_ms"] = duration.Milliseconds()

	if err != nil {
		event.ErrorMessage = err.Error()
	}

	return l.Log(ctx, event)
}

// Search searches audit logs based on filters
func (l *DBLogger) Search(ctx context.Context, filter SearchFilter) ([]*AuditEvent, error) {
	query := `
		SELECT
			id, timestamp, event_type, status,
			guild_id, resource_type, resource_id, channel_id,
			ip_address, user_agent, request_id,
			method, path, status_code,
			message, error_message, metadata, changes
		FROM audit_events
		WHERE 1=1
	`

	args := []interface{}{}
	argCount := 1

	// Build WHERE clause based on filters
	if filter.StartTime != nil {
		query += fmt.Sprintf(" AND timestamp >= $%d", argCount)
		args = append(args, *filter.StartTime)
		argCount++
	}

	if filter.EndTime != nil {
		query += fmt.Sprintf(" AND timestamp <= $%d", argCount)
		args = append(args, *filter.EndTime)
		argCount++
	}

	if filter.GuildID != "" {
		query += fmt.Sprintf(" AND guild_id = $%d", argCount)
		args = append(args, filter.GuildID)
		argCount++
	}

	if len(filter.EventTypes) > 0 {
		query += fmt.Sprintf(" AND event_type = ANY($%d)", argCount)
		eventTypeStrs := make([]string, len(filter.EventTypes))
		for i, et := range filter.EventTypes {
			eventTypeStrs[i] = string(et)
		}
		args = append(args, pq.Array(eventTypeStrs))
		argCount++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, string(*filter.Status))
		argCount++
	}

	if filter.ResourceType != "" {
		query += fmt.Sprintf(" AND resource_type = $%d", argCount)
		args = append(args, string(filter.ResourceType))
		argCount++
	}

	if filter.ResourceID != "" {
		query += fmt.Sprintf(" AND resource_id = $%d", argCount)
		args = append(args, filter.ResourceID)
		argCount++
	}

	if filter.ChannelID != "" {
		query += fmt.Sprintf(" AND channel_id = $%d", argCount)
		args = append(args, filter.ChannelID)
		argCount++
	}

	if filter.IPAddress != "" {
		query += fmt.Sprintf(" AND ip_address = $%d", argCount)
		args = append(args, filter.IPAddress)
		argCount++
	}

	if filter.Method != "" {
		query += fmt.Sprintf(" AND method = $%d", argCount)
		args = append(args, filter.Method)
		argCount++
	}

	if filter.Path != "" {
		query += fmt.Sprintf(" AND path LIKE $%d", argCount)
		args = append(args, "%"+filter.Path+"%")
		argCount++
	}

	// Add sorting
	if filter.SortBy != "" {
		order := "DESC"
		if filter.SortOrder == "asc" {
			order = "ASC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", filter.SortBy, order)
	} else {
		query += " ORDER BY timestamp DESC"
	}

	// Add pagination
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filter.Limit)
		argCount++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filter.Offset)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search audit events: %w", err)
	}
	defer rows.Close()

	events := make([]*AuditEvent, 0)
	for rows.Next() {
		event := &AuditEvent{
			Metadata: make(map[string]interface{}),
		}

		var metadataJSON, changesJSON []byte

		err := rows.Scan(
			&event.ID, &event.Timestamp, &event.EventType, &event.Status,
			&event.GuildID, &event.ResourceType, &event.ResourceID, &event.ChannelID,
			&event.IPAddress, &event.UserAgent, &event.RequestID,
			&event.Method, &event.Path, &event.StatusCode,
			&event.Message, &event.ErrorMessage, &metadataJSON, &changesJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}

		// Unmarshal JSON fields
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

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}

	return events, nil
}

// GetStats retrieves audit log statistics
func (l *DBLogger) GetStats(ctx context.Context, startTime, endTime *time.Time) (*AuditStats, error) {
	stats := &AuditStats{
		EventsByType:   make(map[EventType]int64),
		EventsByStatus: make(map[EventStatus]int64),
		EventsByGuild:  make(map[string]int64),
	}

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if startTime != nil {
		whereClause += fmt.Sprintf(" AND timestamp >= $%d", argCount)
		args = append(args, *startTime)
		argCount++
		if stats.TimeRange == nil {
			stats.TimeRange = &TimeRange{}
		}
		stats.TimeRange.Start = *startTime
	}

	if endTime != nil {
		whereClause += fmt.Sprintf(" AND timestamp <= $%d", argCount)
		args = append(args, *endTime)
		if stats.TimeRange == nil {
			stats.TimeRange = &TimeRange{}
		}
		stats.TimeRange.End = *endTime
	}

	// Total events
	err := l.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM audit_events %s", whereClause), args...).Scan(&stats.TotalEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to get total events: %w", err)
	}

	// Events by type
	rows, err := l.db.QueryContext(ctx, fmt.Sprintf("SELECT event_type, COUNT(*) FROM audit_events %s GROUP BY event_type", whereClause), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get events by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventType EventType
		var count int64
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, err
		}
		stats.EventsByType[eventType] = count
	}

	// Events by status
	rows, err = l.db.QueryContext(ctx, fmt.Sprintf("SELECT status, COUNT(*) FROM audit_events %s GROUP BY status", whereClause), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get events by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status EventStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.EventsByStatus[status] = count
	}

	// Unique guilds
	err = l.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(DISTINCT guild_id) FROM audit_events %s AND guild_id IS NOT NULL", whereClause), args...).Scan(&stats.UniqueGuilds)
	if err != nil {
		return nil, fmt.Errorf("failed to get unique guilds: %w", err)
	}

	// Unique IPs
	err = l.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(DISTINCT ip_address) FROM audit_events %s AND ip_address IS NOT NULL", whereClause), args...).Scan(&stats.UniqueIPs)
	if err != nil {
		return nil, fmt.Errorf("failed to get unique IPs: %w", err)
	}

	// Failures
	failureClause := whereClause + " AND status = 'failure'"
	err = l.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM audit_events %s", failureClause), args...).Scan(&stats.Failures)
	if err != nil {
		return nil, fmt.Errorf("failed to get failures: %w", err)
	}

	// Upstream rejections
	rejectedClause := whereClause + " AND status = 'rejected'"
	err = l.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM audit_events %s", rejectedClause), args...).Scan(&stats.Rejections)
	if err != nil {
		return nil, fmt.Errorf("failed to get rejections: %w", err)
	}

	return stats, nil
}

// Close closes the database logger
func (l *DBLogger) Close() error {
	// We don't close the database connection as it may be shared
	return nil
}
