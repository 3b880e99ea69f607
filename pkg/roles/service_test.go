package roles

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concordhq/concord/pkg/audit"
	"github.com/concordhq/concord/pkg/guild"
	"github.com/concordhq/concord/pkg/permissions"
)

// fakeDirectory counts mutation calls and returns canned results.
type fakeDirectory struct {
	guild.Directory

	createCalls  int
	editCalls    int
	deleteCalls  int
	reorderCalls int

	role          *guild.Role
	err           error
	lastPositions []guild.RolePosition
}

func (d *fakeDirectory) GetRole(ctx context.Context, guildID, roleID string) (*guild.Role, error) {
	if d.role != nil {
		return d.role, nil
	}
	return nil, guild.ErrNotFound
}

func (d *fakeDirectory) CreateRole(ctx context.Context, guildID string, params guild.RoleParams) (*guild.Role, error) {
	d.createCalls++
	if d.err != nil {
		return nil, d.err
	}
	return &guild.Role{ID: "r-new", Name: *params.Name, Position: 1}, nil
}

func (d *fakeDirectory) EditRole(ctx context.Context, guildID, roleID string, params guild.RoleParams) (*guild.Role, error) {
	d.editCalls++
	if d.err != nil {
		return nil, d.err
	}
	updated := &guild.Role{ID: roleID, Name: "edited", Position: 2}
	if params.Name != nil {
		updated.Name = *params.Name
	}
	return updated, nil
}

func (d *fakeDirectory) DeleteRole(ctx context.Context, guildID, roleID string) error {
	d.deleteCalls++
	return d.err
}

func (d *fakeDirectory) SetRolePositions(ctx context.Context, guildID string, positions []guild.RolePosition) error {
	d.reorderCalls++
	d.lastPositions = positions
	return d.err
}

// recordingAuditor captures mutation events for assertions.
type recordingAuditor struct {
	mutations []recordedMutation
	failures  []recordedFailure
}

type recordedMutation struct {
	eventType  audit.EventType
	guildID    string
	resourceID string
	changes    *audit.ChangeDetails
}

type recordedFailure struct {
	eventType audit.EventType
	status    audit.EventStatus
}

func (a *recordingAuditor) Log(ctx context.Context, event *audit.AuditEvent) error { return nil }

func (a *recordingAuditor) LogMutation(ctx context.Context, eventType audit.EventType, guildID string, resourceType audit.ResourceType, resourceID string, changes *audit.ChangeDetails, message string) error {
	a.mutations = append(a.mutations, recordedMutation{eventType, guildID, resourceID, changes})
	return nil
}

func (a *recordingAuditor) LogMutationFailure(ctx context.Context, eventType audit.EventType, guildID string, resourceType audit.ResourceType, resourceID string, status audit.EventStatus, err error) error {
	a.failures = append(a.failures, recordedFailure{eventType, status})
	return nil
}

func (a *recordingAuditor) LogHTTPRequest(ctx context.Context, r *http.Request, statusCode int, duration time.Duration, err error) error {
	return nil
}

func (a *recordingAuditor) Close() error { return nil }

func strPtr(s string) *string { return &s }

func TestServiceCreate(t *testing.T) {
	dir := &fakeDirectory{}
	auditor := &recordingAuditor{}
	svc := NewService(dir, auditor)

	role, err := svc.Create(context.Background(), "g1", guild.RoleParams{Name: strPtr("mods")})
	require.NoError(t, err)
	assert.Equal(t, "r-new", role.ID)
	assert.Equal(t, "mods", role.Name)

	require.Len(t, auditor.mutations, 1)
	assert.Equal(t, audit.EventTypeRoleCreate, auditor.mutations[0].eventType)
	assert.Equal(t, "r-new", auditor.mutations[0].resourceID)
	assert.Equal(t, "mods", auditor.mutations[0].changes.After["name"])
}

func TestServiceCreate_RequiresName(t *testing.T) {
	dir := &fakeDirectory{}
	svc := NewService(dir, nil)

	for _, params := range []guild.RoleParams{{}, {Name: strPtr("")}} {
		_, err := svc.Create(context.Background(), "g1", params)
		assert.ErrorIs(t, err, guild.ErrInvalid)
	}
	assert.Zero(t, dir.createCalls, "invalid requests must not reach the directory")
}

func TestServiceCreate_RejectionAudited(t *testing.T) {
	dir := &fakeDirectory{err: fmt.Errorf("%w: missing permissions", guild.ErrRejected)}
	auditor := &recordingAuditor{}
	svc := NewService(dir, auditor)

	_, err := svc.Create(context.Background(), "g1", guild.RoleParams{Name: strPtr("mods")})
	assert.ErrorIs(t, err, guild.ErrRejected)

	require.Len(t, auditor.failures, 1)
	assert.Equal(t, audit.EventStatusRejected, auditor.failures[0].status)
}

func TestServiceEdit(t *testing.T) {
	before := &guild.Role{ID: "r1", Name: "old", Permissions: permissions.Permissions(8), Position: 2}
	dir := &fakeDirectory{role: before}
	auditor := &recordingAuditor{}
	svc := NewService(dir, auditor)

	role, err := svc.Edit(context.Background(), "g1", "r1", guild.RoleParams{Name: strPtr("new")})
	require.NoError(t, err)
	assert.Equal(t, "new", role.Name)

	require.Len(t, auditor.mutations, 1)
	assert.Equal(t, audit.EventTypeRoleEdit, auditor.mutations[0].eventType)
	assert.Equal(t, "old", auditor.mutations[0].changes.Before["name"])
	assert.Equal(t, "new", auditor.mutations[0].changes.After["name"])
}

func TestServiceEdit_RequiresAField(t *testing.T) {
	dir := &fakeDirectory{}
	svc := NewService(dir, nil)

	_, err := svc.Edit(context.Background(), "g1", "r1", guild.RoleParams{})
	assert.ErrorIs(t, err, guild.ErrInvalid)
	assert.Zero(t, dir.editCalls)
}

// A failed before-image fetch must not block the edit itself.
func TestServiceEdit_ProceedsWithoutBeforeImage(t *testing.T) {
	dir := &fakeDirectory{}
	auditor := &recordingAuditor{}
	svc := NewService(dir, auditor)

	_, err := svc.Edit(context.Background(), "g1", "r1", guild.RoleParams{Name: strPtr("new")})
	require.NoError(t, err)

	require.Len(t, auditor.mutations, 1)
	assert.Nil(t, auditor.mutations[0].changes.Before)
}

func TestServiceDelete(t *testing.T) {
	dir := &fakeDirectory{}
	auditor := &recordingAuditor{}
	svc := NewService(dir, auditor)

	require.NoError(t, svc.Delete(context.Background(), "g1", "r1"))
	assert.Equal(t, 1, dir.deleteCalls)
	require.Len(t, auditor.mutations, 1)
	assert.Equal(t, audit.EventTypeRoleDelete, auditor.mutations[0].eventType)
}

func TestServiceDelete_NotFoundAuditedAsFailure(t *testing.T) {
	dir := &fakeDirectory{err: guild.ErrNotFound}
	auditor := &recordingAuditor{}
	svc := NewService(dir, auditor)

	err := svc.Delete(context.Background(), "g1", "r1")
	assert.ErrorIs(t, err, guild.ErrNotFound)
	require.Len(t, auditor.failures, 1)
	assert.Equal(t, audit.EventStatusFailure, auditor.failures[0].status)
}

func TestServiceReorder(t *testing.T) {
	dir := &fakeDirectory{}
	auditor := &recordingAuditor{}
	svc := NewService(dir, auditor)

	body := json.RawMessage(`[{"role":"r1","position":2},{"role":"r2","position":1}]`)
	require.NoError(t, svc.Reorder(context.Background(), "g1", body))

	assert.Equal(t, []guild.RolePosition{
		{RoleID: "r1", Position: 2},
		{RoleID: "r2", Position: 1},
	}, dir.lastPositions)

	require.Len(t, auditor.mutations, 1)
	assert.Equal(t, audit.EventTypeRoleReorder, auditor.mutations[0].eventType)
	assert.Equal(t, 2, auditor.mutations[0].changes.After["r1"])
}

func TestServiceReorder_ValidationBeforeDirectory(t *testing.T) {
	dir := &fakeDirectory{}
	svc := NewService(dir, nil)

	err := svc.Reorder(context.Background(), "g1", json.RawMessage(`{"role":"r1"}`))
	assert.ErrorIs(t, err, guild.ErrInvalid)
	assert.Zero(t, dir.reorderCalls)
}

func TestServiceInvalidGuildID(t *testing.T) {
	dir := &fakeDirectory{}
	svc := NewService(dir, nil)

	_, err := svc.Create(context.Background(), "", guild.RoleParams{Name: strPtr("x")})
	assert.ErrorIs(t, err, guild.ErrInvalid)

	err = svc.Reorder(context.Background(), "has space", json.RawMessage(`[]`))
	assert.ErrorIs(t, err, guild.ErrInvalid)

	assert.Zero(t, dir.createCalls)
	assert.Zero(t, dir.reorderCalls)
}
