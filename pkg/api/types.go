package api

import (
	"github.com/concordhq/concord/pkg/hierarchy"
)

// GuildDetail is the response body for GET /api/guilds/{id}: the guild's
// identity plus the projected hierarchy. The channels field holds the
// top-level tree nodes; the synthetic uncategorized node, when present, is
// last and carries a null id.
type GuildDetail struct {
	ID       string                  `json:"id"`
	Name     string                  `json:"name"`
	Channels []hierarchy.Node        `json:"channels"`
	Roles    []hierarchy.RoleSummary `json:"roles"`
}

// CreateRoleRequest is the body of POST /api/guilds/{id}/roles. Permissions
// is a decimal-string bitfield; color is an RGB integer and may be null.
type CreateRoleRequest struct {
	Name        string  `json:"name"`
	Color       *int    `json:"color"`
	Permissions *string `json:"permissions"`
}

// EditRoleRequest is the body of PATCH /api/guilds/{id}/roles/{roleId}.
// Absent (or null) fields are left unchanged.
type EditRoleRequest struct {
	Name        *string `json:"name"`
	Color       *int    `json:"color"`
	Permissions *string `json:"permissions"`
}

// OverwriteRequest is the body of PUT .../permissions/{roleId}. Both fields
// are decimal-string bitfields; overlapping bits are forwarded as-is.
type OverwriteRequest struct {
	Allow string `json:"allow"`
	Deny  string `json:"deny"`
}

// SuccessResponse acknowledges mutations whose authoritative result lives
// upstream (reorder, overwrite upsert).
type SuccessResponse struct {
	Success bool `json:"success"`
}
