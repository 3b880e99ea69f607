package audit

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportJSON(t *testing.T) {
	events := []*AuditEvent{
		{
			ID:        1,
			Timestamp: time.Now().UTC(),
			EventType: EventTypeRoleCreate,
			Status:    EventStatusSuccess,
			GuildID:   "g1",
			Metadata:  make(map[string]interface{}),
		},
		{
			ID:        2,
			Timestamp: time.Now().UTC(),
			EventType: EventTypeOverwriteSet,
			Status:    EventStatusSuccess,
			GuildID:   "g1",
			Metadata:  make(map[string]interface{}),
		},
	}

	data, err := exportJSON(events)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// Verify it's valid JSON
	var parsed []*AuditEvent
	err = json.Unmarshal(data, &parsed)
	require.NoError(t, err)
	assert.Len(t, parsed, 2)
}

func TestExportNDJSON(t *testing.T) {
	events := []*AuditEvent{
		{
			ID:        1,
			Timestamp: time.Now().UTC(),
			EventType: EventTypeRoleEdit,
			Status:    EventStatusSuccess,
			GuildID:   "g1",
			Metadata:  make(map[string]interface{}),
		},
		{
			ID:        2,
			Timestamp: time.Now().UTC(),
			EventType: EventTypeRoleDelete,
			Status:    EventStatusSuccess,
			GuildID:   "g1",
			Metadata:  make(map[string]interface{}),
		},
	}

	data, err := exportNDJSON(events)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// Verify each line is valid JSON
	lines := strings.Split(string(data), "\n")
	validLines := 0
	for _, line := range lines {
		if line == "" {
			continue
		}
		var event AuditEvent
		err := json.Unmarshal([]byte(line), &event)
		require.NoError(t, err)
		validLines++
	}
	assert.Equal(t, 2, validLines)
}

func TestExportCSV(t *testing.T) {
	events := []*AuditEvent{
		{
			ID:           1,
			Timestamp:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
			EventType:    EventTypeRoleCreate,
			Status:       EventStatusSuccess,
			GuildID:      "g1",
			ResourceType: ResourceTypeRole,
			ResourceID:   "role1",
			IPAddress:    "192.168.1.1",
			Message:      "role created",
			Metadata:     make(map[string]interface{}),
		},
	}

	data, err := exportCSV(events)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// Verify CSV format
	lines := strings.Split(string(data), "\n")
	assert.GreaterOrEqual(t, len(lines), 2) // At least header + 1 row

	// Check header
	header := lines[0]
	assert.Contains(t, header, "ID")
	assert.Contains(t, header, "Timestamp")
	assert.Contains(t, header, "EventType")
	assert.Contains(t, header, "GuildID")

	// Check data row
	dataRow := lines[1]
	assert.Contains(t, dataRow, "role.create")
	assert.Contains(t, dataRow, "g1")
	assert.Contains(t, dataRow, "role1")
}

func TestExportCSV_EmptyEvents(t *testing.T) {
	events := []*AuditEvent{}

	data, err := exportCSV(events)
	require.NoError(t, err)
	assert.NotEmpty(t, data) // Should still have header

	lines := strings.Split(string(data), "\n")
	assert.GreaterOrEqual(t, len(lines), 1) // At least header
}

func TestExportCSV_SparseEvent(t *testing.T) {
	events := []*AuditEvent{
		{
			ID:        1,
			Timestamp: time.Now().UTC(),
			EventType: EventTypeRoleReorder,
			Status:    EventStatusSuccess,
			Metadata:  make(map[string]interface{}),
		},
	}

	data, err := exportCSV(events)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	lines := strings.Split(string(data), "\n")
	assert.GreaterOrEqual(t, len(lines), 2)
}
