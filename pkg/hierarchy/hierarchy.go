// Package hierarchy projects a flat guild snapshot into the client-facing
// tree: categories containing their channels in display order, one synthetic
// bucket for channels without a resolvable category, and roles ordered by
// seniority. The projection is pure and deterministic regardless of input
// order; it is rebuilt from scratch on every read so a stale tree is never
// served.
package hierarchy

import (
	"sort"

	"github.com/concordhq/concord/pkg/guild"
	"github.com/concordhq/concord/pkg/permissions"
)

// UncategorizedName is the display name of the synthetic bucket holding
// channels whose parent category is missing or unresolvable.
const UncategorizedName = "No Category"

// OverwriteView is the filtered per-node view of one role overwrite.
// Bitfields serialize as decimal strings.
type OverwriteView struct {
	RoleID string                  `json:"role_id"`
	Allow  permissions.Permissions `json:"allow"`
	Deny   permissions.Permissions `json:"deny"`
}

// ChannelNode is one non-category channel in the projected tree.
type ChannelNode struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Kind       guild.ChannelKind `json:"kind"`
	Overwrites []OverwriteView   `json:"overwrites"`
}

// Node is a top-level tree entry: a real category, or the synthetic
// uncategorized bucket whose ID serializes as JSON null. Position is the
// category's ordering key; the synthetic bucket has none and omits the field.
type Node struct {
	ID         *string         `json:"id"`
	Name       string          `json:"name"`
	Position   *int            `json:"position,omitempty"`
	Overwrites []OverwriteView `json:"overwrites"`
	Channels   []ChannelNode   `json:"channels"`
}

// RoleSummary is one role in precedence order.
type RoleSummary struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Color       *int                    `json:"color"`
	Permissions permissions.Permissions `json:"permissions"`
	Position    int                     `json:"position"`
}

// Projection is the full client-ready view of one guild.
type Projection struct {
	Nodes []Node
	Roles []RoleSummary
}

// Project builds the hierarchy for a snapshot. It never fails: malformed
// records are normalized (a stale parent reference lands its channel in the
// uncategorized bucket) rather than dropped or rejected.
func Project(snap *guild.Snapshot) Projection {
	categories := make([]guild.Channel, 0, len(snap.Channels))
	channels := make([]guild.Channel, 0, len(snap.Channels))
	for _, ch := range snap.Channels {
		if ch.Kind.IsCategory() {
			categories = append(categories, ch)
		} else {
			channels = append(channels, ch)
		}
	}

	// Position ascending, ID as the deterministic tie-break. The source is
	// not expected to produce ties within a sibling scope; the tie-break
	// only pins the output for any single run.
	byPosition := func(s []guild.Channel) {
		sort.SliceStable(s, func(i, j int) bool {
			if s[i].Position != s[j].Position {
				return s[i].Position < s[j].Position
			}
			return s[i].ID < s[j].ID
		})
	}
	byPosition(categories)
	byPosition(channels)

	overwrites := groupRoleOverwrites(snap.Overwrites)

	nodes := make([]Node, 0, len(categories)+1)
	children := make(map[string]int, len(categories))
	for _, cat := range categories {
		id := cat.ID
		pos := cat.Position
		views := overwrites[cat.ID]
		if views == nil {
			views = []OverwriteView{}
		}
		nodes = append(nodes, Node{
			ID:         &id,
			Name:       cat.Name,
			Position:   &pos,
			Overwrites: views,
			Channels:   []ChannelNode{},
		})
		children[cat.ID] = len(nodes) - 1
	}

	// Stable partition: channels keep their global sort order inside each
	// bucket, including the uncategorized one.
	var orphans []ChannelNode
	for _, ch := range channels {
		node := ChannelNode{
			ID:         ch.ID,
			Name:       ch.Name,
			Kind:       ch.Kind,
			Overwrites: overwrites[ch.ID],
		}
		if node.Overwrites == nil {
			node.Overwrites = []OverwriteView{}
		}
		if idx, ok := children[ch.ParentID]; ok && ch.ParentID != "" {
			nodes[idx].Channels = append(nodes[idx].Channels, node)
		} else {
			orphans = append(orphans, node)
		}
	}

	// The synthetic bucket always trails every real category and only
	// exists when it has members.
	if len(orphans) > 0 {
		nodes = append(nodes, Node{
			ID:         nil,
			Name:       UncategorizedName,
			Overwrites: []OverwriteView{},
			Channels:   orphans,
		})
	}

	return Projection{
		Nodes: nodes,
		Roles: projectRoles(snap.Roles),
	}
}

// projectRoles orders roles by position descending (highest precedence
// first), ID ascending on ties. The sort is a correctness property: any
// permutation of the input produces the same output.
func projectRoles(roles []guild.Role) []RoleSummary {
	out := make([]RoleSummary, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleSummary{
			ID:          r.ID,
			Name:        r.Name,
			Color:       r.Color,
			Permissions: r.Permissions,
			Position:    r.Position,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position > out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// groupRoleOverwrites buckets role-principal overwrites by channel, dropping
// member-principal records: this projection serves role management and member
// overwrites are out of its scope. Views within a channel are ordered by role
// ID for determinism.
func groupRoleOverwrites(ows []guild.Overwrite) map[string][]OverwriteView {
	grouped := make(map[string][]OverwriteView)
	for _, ow := range ows {
		if ow.PrincipalType != guild.PrincipalRole {
			continue
		}
		grouped[ow.ChannelID] = append(grouped[ow.ChannelID], OverwriteView{
			RoleID: ow.PrincipalID,
			Allow:  ow.Allow,
			Deny:   ow.Deny,
		})
	}
	for id := range grouped {
		views := grouped[id]
		sort.Slice(views, func(i, j int) bool { return views[i].RoleID < views[j].RoleID })
	}
	return grouped
}
