package api

import (
	"net/http"

	"github.com/concordhq/concord/pkg/hierarchy"
	"github.com/concordhq/concord/pkg/httputil"
)

// listGuilds handles GET /api/guilds
func (s *Server) listGuilds(w http.ResponseWriter, r *http.Request) {
	guilds, err := s.dir.ListGuilds(r.Context())
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	httputil.WriteSuccess(w, guilds)
}

// getGuild handles GET /api/guilds/{id}. Every call re-projects a fresh
// snapshot; nothing is cached.
func (s *Server) getGuild(w http.ResponseWriter, r *http.Request) {
	guildID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	snap, err := s.dir.Snapshot(r.Context(), guildID)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	proj := hierarchy.Project(snap)
	httputil.WriteSuccess(w, GuildDetail{
		ID:       snap.Guild.ID,
		Name:     snap.Guild.Name,
		Channels: proj.Nodes,
		Roles:    proj.Roles,
	})
}
