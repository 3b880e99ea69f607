package audit

import (
	"encoding/json"
	"time"
)

// EventType represents the category of audit event
type EventType string

const (
	// Role mutation events
	EventTypeRoleCreate  EventType = "role.create"
	EventTypeRoleEdit    EventType = "role.edit"
	EventTypeRoleDelete  EventType = "role.delete"
	EventTypeRoleReorder EventType = "role.reorder"

	// Overwrite mutation events
	EventTypeOverwriteSet    EventType = "overwrite.set"
	EventTypeOverwriteDelete EventType = "overwrite.delete"

	// Read/access events (for request-level auditing)
	EventTypeAccessGuildRead EventType = "access.guild_read"
)

// EventStatus represents the outcome of an event
type EventStatus string

const (
	EventStatusSuccess  EventStatus = "success"
	EventStatusFailure  EventStatus = "failure"
	EventStatusRejected EventStatus = "rejected"
)

// ResourceType represents the type of resource being mutated
type ResourceType string

const (
	ResourceTypeGuild     ResourceType = "guild"
	ResourceTypeRole      ResourceType = "role"
	ResourceTypeChannel   ResourceType = "channel"
	ResourceTypeOverwrite ResourceType = "overwrite"
)

// AuditEvent represents a single audit log entry
type AuditEvent struct {
	// Core fields
	ID        int64       `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	EventType EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	// Resource information
	GuildID      string       `json:"guild_id,omitempty"`
	ResourceType ResourceType `json:"resource_type,omitempty"`
	ResourceID   string       `json:"resource_id,omitempty"`
	ChannelID    string       `json:"channel_id,omitempty"`

	// Request context
	IPAddress  string `json:"ip_address,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Method     string `json:"method,omitempty"`
	Path       string `json:"path,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`

	// Additional details
	Message      string                 `json:"message,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`

	// Changes tracking (before/after for edits)
	Changes *ChangeDetails `json:"changes,omitempty"`
}

// ChangeDetails tracks before/after values for edits
type ChangeDetails struct {
	Before map[string]interface{} `json:"before,omitempty"`
	After  map[string]interface{} `json:"after,omitempty"`
}

// ToJSON converts the audit event to JSON
func (e *AuditEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an audit event from JSON
func FromJSON(data []byte) (*AuditEvent, error) {
	var event AuditEvent
	err := json.Unmarshal(data, &event)
	return &event, err
}

// SearchFilter represents filters for searching audit logs
type SearchFilter struct {
	// Time range
	StartTime *time.Time
	EndTime   *time.Time

	// Resource filters
	GuildID      string
	ResourceType ResourceType
	ResourceID   string
	ChannelID    string

	// Event filters
	EventTypes []EventType
	Status     *EventStatus

	// Request context filters
	IPAddress string
	Method    string
	Path      string

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // field name to sort by
	SortOrder string // "asc" or "desc"
}

// ExportFormat represents the format for exporting audit logs
type ExportFormat string

const (
	ExportFormatJSON   ExportFormat = "json"
	ExportFormatCSV    ExportFormat = "csv"
	ExportFormatNDJSON ExportFormat = "ndjson" // Newline-delimited JSON
)

// AuditStats represents statistics about audit logs
type AuditStats struct {
	TotalEvents    int64                 `json:"total_events"`
	EventsByType   map[EventType]int64   `json:"events_by_type"`
	EventsByStatus map[EventStatus]int64 `json:"events_by_status"`
	EventsByGuild  map[string]int64      `json:"events_by_guild"`
	UniqueGuilds   int64                 `json:"unique_guilds"`
	UniqueIPs      int64                 `json:"unique_ips"`
	Failures       int64                 `json:"failures"`
	Rejections     int64                 `json:"rejections"`
	TimeRange      *TimeRange            `json:"time_range,omitempty"`
}

// TimeRange represents a time range for statistics
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RetentionPolicy defines how long audit logs should be kept
type RetentionPolicy struct {
	// RetentionDays is the number of days to keep audit logs
	RetentionDays int

	// ArchiveEnabled determines if old logs should be archived instead of deleted
	ArchiveEnabled bool

	// ArchivePath is where archived logs should be stored
	ArchivePath string
}

// DefaultRetentionPolicy returns a default retention policy (90 days)
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		RetentionDays: 90,
	}
}
