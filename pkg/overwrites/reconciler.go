// Package overwrites reconciles permission-overwrite mutations for role
// principals against the directory service.
package overwrites

import (
	"context"
	"errors"
	"fmt"

	"github.com/concordhq/concord/pkg/guild"
	"github.com/concordhq/concord/pkg/permissions"
)

// Reconciler applies create/update/delete operations to a single channel's
// overwrite for a single role principal. It validates shape only: allow and
// deny must each be a non-negative decimal integer, but overlapping bits
// between the two are accepted as-is and left for the directory service to
// resolve.
type Reconciler struct {
	dir guild.Directory
}

// NewReconciler builds a Reconciler over a directory backend.
func NewReconciler(dir guild.Directory) *Reconciler {
	return &Reconciler{dir: dir}
}

// Upsert creates or replaces the channel's overwrite for the role. The
// channel is resolved first so a missing channel surfaces as ErrNotFound
// rather than an upstream write rejection.
func (r *Reconciler) Upsert(ctx context.Context, guildID, channelID, roleID, allow, deny string) (guild.Overwrite, error) {
	allowBits, err := permissions.Parse(allow)
	if err != nil {
		return guild.Overwrite{}, fmt.Errorf("%w: allow: %v", guild.ErrInvalid, err)
	}
	denyBits, err := permissions.Parse(deny)
	if err != nil {
		return guild.Overwrite{}, fmt.Errorf("%w: deny: %v", guild.ErrInvalid, err)
	}

	if _, err := r.dir.GetChannel(ctx, guildID, channelID); err != nil {
		return guild.Overwrite{}, err
	}

	ow := guild.Overwrite{
		ChannelID:     channelID,
		PrincipalType: guild.PrincipalRole,
		PrincipalID:   roleID,
		Allow:         allowBits,
		Deny:          denyBits,
	}
	if err := r.dir.SetOverwrite(ctx, guildID, channelID, roleID, ow); err != nil {
		return guild.Overwrite{}, err
	}
	return ow, nil
}

// Remove deletes the channel's overwrite for the role. Absence of the
// overwrite itself is success (idempotent delete); an unknown guild or
// channel still fails with ErrNotFound.
func (r *Reconciler) Remove(ctx context.Context, guildID, channelID, roleID string) error {
	if _, err := r.dir.GetChannel(ctx, guildID, channelID); err != nil {
		return err
	}
	err := r.dir.DeleteOverwrite(ctx, guildID, channelID, roleID)
	if errors.Is(err, guild.ErrNotFound) {
		return nil
	}
	return err
}
