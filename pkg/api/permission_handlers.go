package api

import (
	"net/http"

	"github.com/concordhq/concord/pkg/httputil"
	"github.com/concordhq/concord/pkg/permissions"
)

// listPermissions handles GET /api/permissions. The catalog is immutable
// after process start; values serialize as decimal strings like every other
// bitfield on the wire.
func (s *Server) listPermissions(w http.ResponseWriter, r *http.Request) {
	flags := permissions.Flags()
	out := make(map[string]string, len(flags))
	for name, value := range flags {
		out[name] = value.String()
	}
	httputil.WriteSuccess(w, out)
}
