package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/concordhq/concord/pkg/guild"
	"github.com/concordhq/concord/pkg/httputil"
	"github.com/concordhq/concord/pkg/permissions"
)

// parsePermissionsField parses an optional decimal-string bitfield from a
// request body. A nil input means the field was absent.
func parsePermissionsField(field *string) (*permissions.Permissions, error) {
	if field == nil {
		return nil, nil
	}
	p, err := permissions.Parse(*field)
	if err != nil {
		return nil, fmt.Errorf("%w: permissions: %v", guild.ErrInvalid, err)
	}
	return &p, nil
}

// createRole handles POST /api/guilds/{id}/roles
func (s *Server) createRole(w http.ResponseWriter, r *http.Request) {
	guildID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req CreateRoleRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteValidationError(w, "role name is required")
		return
	}

	perms, err := parsePermissionsField(req.Permissions)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	role, err := s.roles.Create(r.Context(), guildID, guild.RoleParams{
		Name:        &req.Name,
		Color:       req.Color,
		Permissions: perms,
	})
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	httputil.WriteCreated(w, role)
}

// reorderRoles handles PATCH /api/guilds/{id}/roles. The body is validated
// structurally and forwarded verbatim; the directory owns reorder semantics.
func (s *Server) reorderRoles(w http.ResponseWriter, r *http.Request) {
	guildID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteValidationError(w, "failed to read request body")
		return
	}

	if err := s.roles.Reorder(r.Context(), guildID, json.RawMessage(body)); err != nil {
		writeDirectoryError(w, err)
		return
	}
	httputil.WriteSuccess(w, SuccessResponse{Success: true})
}

// editRole handles PATCH /api/guilds/{id}/roles/{roleId}
func (s *Server) editRole(w http.ResponseWriter, r *http.Request) {
	guildID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	roleID, ok := httputil.ParsePathStringOrError(w, r, "roleId")
	if !ok {
		return
	}

	var req EditRoleRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	perms, err := parsePermissionsField(req.Permissions)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}

	role, err := s.roles.Edit(r.Context(), guildID, roleID, guild.RoleParams{
		Name:        req.Name,
		Color:       req.Color,
		Permissions: perms,
	})
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	httputil.WriteSuccess(w, role)
}

// deleteRole handles DELETE /api/guilds/{id}/roles/{roleId}
func (s *Server) deleteRole(w http.ResponseWriter, r *http.Request) {
	guildID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	roleID, ok := httputil.ParsePathStringOrError(w, r, "roleId")
	if !ok {
		return
	}

	if err := s.roles.Delete(r.Context(), guildID, roleID); err != nil {
		writeDirectoryError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
