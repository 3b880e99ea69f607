package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/concordhq/concord/pkg/audit"
	"github.com/concordhq/concord/pkg/guild"
	"github.com/concordhq/concord/pkg/httputil"
)

// putOverwrite handles PUT /api/guilds/{id}/channels/{channelId}/permissions/{roleId}
func (s *Server) putOverwrite(w http.ResponseWriter, r *http.Request) {
	vars := httputil.GetPathVars(r)
	guildID, channelID, roleID := vars["id"], vars["channelId"], vars["roleId"]

	var req OverwriteRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	ow, err := s.reconciler.Upsert(r.Context(), guildID, channelID, roleID, req.Allow, req.Deny)
	if err != nil {
		s.auditor.LogMutationFailure(r.Context(), audit.EventTypeOverwriteSet, guildID, audit.ResourceTypeOverwrite, roleID, overwriteStatus(err), err)
		writeDirectoryError(w, err)
		return
	}

	s.auditor.LogMutation(r.Context(), audit.EventTypeOverwriteSet, guildID, audit.ResourceTypeOverwrite, roleID, &audit.ChangeDetails{
		After: map[string]interface{}{
			"channel_id": channelID,
			"allow":      ow.Allow.String(),
			"deny":       ow.Deny.String(),
		},
	}, fmt.Sprintf("set overwrite for role %s on channel %s", roleID, channelID))
	httputil.WriteSuccess(w, SuccessResponse{Success: true})
}

// deleteOverwrite handles DELETE /api/guilds/{id}/channels/{channelId}/permissions/{roleId}.
// Deleting an overwrite that is already gone succeeds.
func (s *Server) deleteOverwrite(w http.ResponseWriter, r *http.Request) {
	vars := httputil.GetPathVars(r)
	guildID, channelID, roleID := vars["id"], vars["channelId"], vars["roleId"]

	if err := s.reconciler.Remove(r.Context(), guildID, channelID, roleID); err != nil {
		s.auditor.LogMutationFailure(r.Context(), audit.EventTypeOverwriteDelete, guildID, audit.ResourceTypeOverwrite, roleID, overwriteStatus(err), err)
		writeDirectoryError(w, err)
		return
	}

	s.auditor.LogMutation(r.Context(), audit.EventTypeOverwriteDelete, guildID, audit.ResourceTypeOverwrite, roleID, nil,
		fmt.Sprintf("removed overwrite for role %s on channel %s", roleID, channelID))
	httputil.WriteNoContent(w)
}

func overwriteStatus(err error) audit.EventStatus {
	if errors.Is(err, guild.ErrRejected) {
		return audit.EventStatusRejected
	}
	return audit.EventStatusFailure
}
