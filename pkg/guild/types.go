// Package guild defines the directory domain model: guilds, roles, channels,
// and permission overwrites, plus the read/write contracts the rest of the
// service depends on. All values here are request-scoped copies; the upstream
// directory service owns the persistent state.
package guild

import "github.com/concordhq/concord/pkg/permissions"

// Guild identifies a single guild in the directory.
type Guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Role is a guild role. Position orders roles for both display and permission
// precedence: a higher position is more senior.
type Role struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Color       *int                    `json:"color"`
	Permissions permissions.Permissions `json:"permissions"`
	Position    int                     `json:"position"`
}

// ChannelKind is the closed set of channel discriminants. Every kind other
// than KindCategory behaves identically to the hierarchy projection; the
// closed set exists so an unrecognized upstream type code can never slip
// through the category filter.
type ChannelKind string

const (
	KindCategory     ChannelKind = "category"
	KindText         ChannelKind = "text"
	KindVoice        ChannelKind = "voice"
	KindAnnouncement ChannelKind = "announcement"
	KindForum        ChannelKind = "forum"
	KindStage        ChannelKind = "stage"
	KindUnknown      ChannelKind = "unknown"
)

// IsCategory reports whether the kind is the category discriminant.
func (k ChannelKind) IsCategory() bool { return k == KindCategory }

// Channel is a guild channel. ParentID references a category's ID and is
// empty for top-level channels and for categories themselves (the model is
// exactly two levels deep). Position orders siblings ascending and is unique
// only within a sibling scope.
type Channel struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Kind     ChannelKind `json:"kind"`
	ParentID string      `json:"parent_id,omitempty"`
	Position int         `json:"position"`
}

// PrincipalType scopes a permission overwrite to a role or an individual
// member.
type PrincipalType string

const (
	PrincipalRole   PrincipalType = "role"
	PrincipalMember PrincipalType = "member"
)

// Overwrite is a per-channel, per-principal allow/deny bitfield pair. A bit
// absent from both fields inherits from the channel's parent or the guild
// default. At most one overwrite exists per (channel, principal type,
// principal id).
type Overwrite struct {
	ChannelID     string                  `json:"channel_id"`
	PrincipalType PrincipalType           `json:"principal_type"`
	PrincipalID   string                  `json:"principal_id"`
	Allow         permissions.Permissions `json:"allow"`
	Deny          permissions.Permissions `json:"deny"`
}

// Snapshot is a point-in-time flat view of one guild's entities. It is a
// value, not a handle into shared mutable state: projections take a Snapshot
// and never need to reason about upstream cache invalidation.
type Snapshot struct {
	Guild      Guild
	Roles      []Role
	Channels   []Channel
	Overwrites []Overwrite
}

// RolePosition is one entry of a bulk role reorder.
type RolePosition struct {
	RoleID   string
	Position int
}

// RoleParams carries the mutable fields of a role for create/edit calls. Nil
// fields are left unchanged by an edit.
type RoleParams struct {
	Name        *string
	Color       *int
	Permissions *permissions.Permissions
}
