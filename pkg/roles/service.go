package roles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/concordhq/concord/pkg/audit"
	"github.com/concordhq/concord/pkg/guild"
)

// Service brokers role mutations to the directory and records an audit event
// for every attempt. It adds no semantics of its own beyond structural
// validation: the directory service remains the authority on what a legal
// role state is.
type Service struct {
	dir     guild.Directory
	auditor audit.Logger
}

// NewService creates a role mutation service. auditor may be nil, in which
// case events are discarded.
func NewService(dir guild.Directory, auditor audit.Logger) *Service {
	if auditor == nil {
		auditor = audit.NopLogger()
	}
	return &Service{dir: dir, auditor: auditor}
}

// Create creates a role. A non-nil, non-empty name is required; color and
// permissions are optional and default upstream.
func (s *Service) Create(ctx context.Context, guildID string, params guild.RoleParams) (*guild.Role, error) {
	if !ValidID(guildID) {
		return nil, fmt.Errorf("%w: invalid guild id %q", guild.ErrInvalid, guildID)
	}
	if params.Name == nil || *params.Name == "" {
		return nil, fmt.Errorf("%w: role name is required", guild.ErrInvalid)
	}

	role, err := s.dir.CreateRole(ctx, guildID, params)
	if err != nil {
		s.auditor.LogMutationFailure(ctx, audit.EventTypeRoleCreate, guildID, audit.ResourceTypeRole, "", statusFor(err), err)
		return nil, err
	}

	s.auditor.LogMutation(ctx, audit.EventTypeRoleCreate, guildID, audit.ResourceTypeRole, role.ID, &audit.ChangeDetails{
		After: roleFields(role),
	}, fmt.Sprintf("created role %q", role.Name))
	return role, nil
}

// Edit applies a partial edit to a role. At least one field must be set.
func (s *Service) Edit(ctx context.Context, guildID, roleID string, params guild.RoleParams) (*guild.Role, error) {
	if !ValidID(guildID) {
		return nil, fmt.Errorf("%w: invalid guild id %q", guild.ErrInvalid, guildID)
	}
	if !ValidID(roleID) {
		return nil, fmt.Errorf("%w: invalid role id %q", guild.ErrInvalid, roleID)
	}
	if params.Name == nil && params.Color == nil && params.Permissions == nil {
		return nil, fmt.Errorf("%w: edit requires at least one field", guild.ErrInvalid)
	}
	if params.Name != nil && *params.Name == "" {
		return nil, fmt.Errorf("%w: role name cannot be empty", guild.ErrInvalid)
	}

	// Best-effort before image; the edit proceeds even if the point fetch
	// fails, since the directory call is the source of truth.
	var before map[string]interface{}
	if prev, err := s.dir.GetRole(ctx, guildID, roleID); err == nil {
		before = roleFields(prev)
	}

	role, err := s.dir.EditRole(ctx, guildID, roleID, params)
	if err != nil {
		s.auditor.LogMutationFailure(ctx, audit.EventTypeRoleEdit, guildID, audit.ResourceTypeRole, roleID, statusFor(err), err)
		return nil, err
	}

	s.auditor.LogMutation(ctx, audit.EventTypeRoleEdit, guildID, audit.ResourceTypeRole, roleID, &audit.ChangeDetails{
		Before: before,
		After:  roleFields(role),
	}, fmt.Sprintf("edited role %q", role.Name))
	return role, nil
}

// Delete removes a role.
func (s *Service) Delete(ctx context.Context, guildID, roleID string) error {
	if !ValidID(guildID) {
		return fmt.Errorf("%w: invalid guild id %q", guild.ErrInvalid, guildID)
	}
	if !ValidID(roleID) {
		return fmt.Errorf("%w: invalid role id %q", guild.ErrInvalid, roleID)
	}

	if err := s.dir.DeleteRole(ctx, guildID, roleID); err != nil {
		s.auditor.LogMutationFailure(ctx, audit.EventTypeRoleDelete, guildID, audit.ResourceTypeRole, roleID, statusFor(err), err)
		return err
	}

	s.auditor.LogMutation(ctx, audit.EventTypeRoleDelete, guildID, audit.ResourceTypeRole, roleID, nil, "deleted role")
	return nil
}

// Reorder validates a raw reorder body and forwards the positions to the
// directory. Validation failures never reach the directory.
func (s *Service) Reorder(ctx context.Context, guildID string, raw json.RawMessage) error {
	if !ValidID(guildID) {
		return fmt.Errorf("%w: invalid guild id %q", guild.ErrInvalid, guildID)
	}

	positions, err := ParseReorder(raw)
	if err != nil {
		return err
	}

	if err := s.dir.SetRolePositions(ctx, guildID, positions); err != nil {
		s.auditor.LogMutationFailure(ctx, audit.EventTypeRoleReorder, guildID, audit.ResourceTypeGuild, guildID, statusFor(err), err)
		return err
	}

	after := make(map[string]interface{}, len(positions))
	for _, p := range positions {
		after[p.RoleID] = p.Position
	}
	s.auditor.LogMutation(ctx, audit.EventTypeRoleReorder, guildID, audit.ResourceTypeGuild, guildID, &audit.ChangeDetails{
		After: after,
	}, fmt.Sprintf("reordered %d roles", len(positions)))
	return nil
}

// statusFor classifies a directory error for the audit trail. Upstream
// refusals are recorded as rejections; everything else is a failure.
func statusFor(err error) audit.EventStatus {
	if errors.Is(err, guild.ErrRejected) {
		return audit.EventStatusRejected
	}
	return audit.EventStatusFailure
}

func roleFields(r *guild.Role) map[string]interface{} {
	if r == nil {
		return nil
	}
	fields := map[string]interface{}{
		"name":        r.Name,
		"permissions": r.Permissions.String(),
		"position":    r.Position,
	}
	if r.Color != nil {
		fields["color"] = *r.Color
	}
	return fields
}
