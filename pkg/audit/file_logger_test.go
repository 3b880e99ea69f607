package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogger_Basic(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "audit-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	config := FileLoggerConfig{
		BasePath: tmpDir,
		Rotate:   false,
		MaxSize:  1024 * 1024,
		MaxFiles: 5,
	}

	logger, err := NewFileLogger(config)
	require.NoError(t, err)
	defer logger.Close()

	ctx := context.Background()
	event := &AuditEvent{
		Timestamp:    time.Now().UTC(),
		EventType:    EventTypeRoleCreate,
		Status:       EventStatusSuccess,
		GuildID:      "g1",
		ResourceType: ResourceTypeRole,
		ResourceID:   "role1",
		IPAddress:    "192.168.1.1",
		Message:      "role created",
		Metadata:     make(map[string]interface{}),
	}

	err = logger.Log(ctx, event)
	require.NoError(t, err)

	// Verify log file was created
	logFile := filepath.Join(tmpDir, "audit.log")
	assert.FileExists(t, logFile)

	events, err := logger.ReadLogs(10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, EventTypeRoleCreate, events[0].EventType)
	assert.Equal(t, "g1", events[0].GuildID)
}

func TestFileLogger_MultipleEvents(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "audit-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	config := FileLoggerConfig{
		BasePath: tmpDir,
		Rotate:   false,
	}

	logger, err := NewFileLogger(config)
	require.NoError(t, err)
	defer logger.Close()

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		event := &AuditEvent{
			Timestamp: time.Now().UTC(),
			EventType: EventTypeOverwriteSet,
			Status:    EventStatusSuccess,
			Message:   "overwrite set",
			Metadata:  make(map[string]interface{}),
		}
		err = logger.Log(ctx, event)
		require.NoError(t, err)
	}

	events, err := logger.ReadLogs(10)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestFileLogger_LogMutation(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "audit-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	config := FileLoggerConfig{
		BasePath: tmpDir,
		Rotate:   false,
	}

	logger, err := NewFileLogger(config)
	require.NoError(t, err)
	defer logger.Close()

	ctx := context.Background()
	changes := &ChangeDetails{
		Before: map[string]interface{}{"name": "members"},
		After:  map[string]interface{}{"name": "regulars"},
	}

	err = logger.LogMutation(ctx, EventTypeRoleEdit, "g1", ResourceTypeRole, "role1", changes, "role renamed")
	require.NoError(t, err)

	events, err := logger.ReadLogs(1)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, EventTypeRoleEdit, events[0].EventType)
	assert.Equal(t, ResourceTypeRole, events[0].ResourceType)
	assert.Equal(t, "g1", events[0].GuildID)
	assert.NotNil(t, events[0].Changes)
}

func TestFileLogger_LogMutationFailure(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "audit-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	logger, err := NewFileLogger(FileLoggerConfig{BasePath: tmpDir})
	require.NoError(t, err)
	defer logger.Close()

	err = logger.LogMutationFailure(context.Background(), EventTypeRoleDelete, "g1", ResourceTypeRole, "role1",
		EventStatusRejected, assert.AnError)
	require.NoError(t, err)

	events, err := logger.ReadLogs(1)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, EventStatusRejected, events[0].Status)
	assert.NotEmpty(t, events[0].ErrorMessage)
}

func TestDefaultFileLoggerConfig(t *testing.T) {
	config := DefaultFileLoggerConfig()

	assert.Equal(t, "/var/log/concord/audit", config.BasePath)
	assert.True(t, config.Rotate)
	assert.Equal(t, int64(100*1024*1024), config.MaxSize)
	assert.Equal(t, 10, config.MaxFiles)
}
