package guild

import (
	"context"
	"errors"
)

// Sentinel errors classifying every failure the directory layer can surface.
// Callers branch with errors.Is; the wrapped detail string travels to the API
// response untouched.
var (
	// ErrNotFound means a referenced guild, channel, role, or overwrite does
	// not exist upstream.
	ErrNotFound = errors.New("not found")

	// ErrInvalid means the request was structurally malformed and was
	// rejected before any directory call.
	ErrInvalid = errors.New("invalid request")

	// ErrRejected means the directory service refused the operation (for
	// example, missing privilege). Never retried.
	ErrRejected = errors.New("rejected by directory service")

	// ErrUnavailable means the snapshot source could not be read.
	ErrUnavailable = errors.New("directory service unavailable")
)

// Source is the read contract: bulk enumeration for the projection path.
type Source interface {
	// ListGuilds enumerates all guilds visible to the service.
	ListGuilds(ctx context.Context) ([]Guild, error)

	// Snapshot returns the full flat entity collection for one guild.
	// Fails with ErrNotFound for an unknown guild and ErrUnavailable when
	// the directory cannot be read.
	Snapshot(ctx context.Context, guildID string) (*Snapshot, error)
}

// Directory extends Source with point fetches and the mutations the service
// brokers. Every mutation delegates persistence upstream and returns the
// authoritative result; nothing here retries or compensates.
type Directory interface {
	Source

	// GetRole fetches a single role by id.
	GetRole(ctx context.Context, guildID, roleID string) (*Role, error)

	// GetChannel fetches a single channel by id.
	GetChannel(ctx context.Context, guildID, channelID string) (*Channel, error)

	// CreateRole creates a role and returns the created record.
	CreateRole(ctx context.Context, guildID string, params RoleParams) (*Role, error)

	// EditRole applies a partial role edit and returns the updated record.
	EditRole(ctx context.Context, guildID, roleID string, params RoleParams) (*Role, error)

	// DeleteRole removes a role.
	DeleteRole(ctx context.Context, guildID, roleID string) error

	// SetRolePositions applies a bulk reorder. Partial reorders are legal;
	// entries are forwarded verbatim.
	SetRolePositions(ctx context.Context, guildID string, positions []RolePosition) error

	// SetOverwrite creates or replaces the role-principal overwrite on a
	// channel.
	SetOverwrite(ctx context.Context, guildID, channelID, roleID string, ow Overwrite) error

	// DeleteOverwrite removes the role-principal overwrite from a channel.
	// Deleting an absent overwrite fails with ErrNotFound; idempotency is
	// layered on by the reconciler.
	DeleteOverwrite(ctx context.Context, guildID, channelID, roleID string) error
}
