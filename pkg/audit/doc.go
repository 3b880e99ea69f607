// Package audit provides audit logging of guild mutations for compliance and forensics.
//
// # Overview
//
// This package records every role and overwrite mutation brokered to the
// upstream directory service, with before/after values and request context.
//
// # Event Types
//
// Roles: role.create, role.edit, role.delete, role.reorder
// Overwrites: overwrite.set, overwrite.delete
// Access: access.guild_read (request-level middleware logging)
//
// # Usage Example
//
// Log a mutation with before/after:
//
//	logger.LogMutation(ctx, audit.EventTypeRoleEdit, guildID,
//		audit.ResourceTypeRole, roleID,
//		&audit.ChangeDetails{
//			Before: map[string]interface{}{"name": "members"},
//			After:  map[string]interface{}{"name": "regulars"},
//		}, "role renamed")
//
// Search audit logs:
//
//	events, err := store.Search(ctx, audit.SearchFilter{
//		GuildID:    guildID,
//		EventTypes: []audit.EventType{audit.EventTypeRoleDelete},
//		Limit:      100,
//	})
//
// # Retention Policy
//
// Default: 90 days active retention, enforced by the concord-auditor binary.
// Export: JSON, CSV, NDJSON formats for external analysis.
//
// # Related Packages
//
//   - pkg/roles: role mutation events
//   - pkg/overwrites: overwrite mutation events
package audit
