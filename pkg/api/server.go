package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/concordhq/concord/pkg/audit"
	"github.com/concordhq/concord/pkg/guild"
	"github.com/concordhq/concord/pkg/httputil"
	"github.com/concordhq/concord/pkg/overwrites"
	"github.com/concordhq/concord/pkg/roles"
)

// Server is the public API server. It owns no state beyond its collaborators;
// every request re-reads the directory.
type Server struct {
	dir        guild.Directory
	roles      *roles.Service
	reconciler *overwrites.Reconciler
	auditor    audit.Logger
	router     *mux.Router
}

// NewServer creates an API server over a directory. auditor may be nil to
// disable audit logging.
func NewServer(dir guild.Directory, auditor audit.Logger) *Server {
	if auditor == nil {
		auditor = audit.NopLogger()
	}
	s := &Server{
		dir:        dir,
		roles:      roles.NewService(dir, auditor),
		reconciler: overwrites.NewReconciler(dir),
		auditor:    auditor,
		router:     mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	api := s.router.PathPrefix("/api").Subrouter()
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// Read routes
	api.HandleFunc("/guilds", s.listGuilds).Methods("GET")
	api.HandleFunc("/guilds/{id}", s.getGuild).Methods("GET")
	api.HandleFunc("/permissions", s.listPermissions).Methods("GET")

	// Role mutation routes
	api.HandleFunc("/guilds/{id}/roles", s.createRole).Methods("POST")
	api.HandleFunc("/guilds/{id}/roles", s.reorderRoles).Methods("PATCH")
	api.HandleFunc("/guilds/{id}/roles/{roleId}", s.editRole).Methods("PATCH")
	api.HandleFunc("/guilds/{id}/roles/{roleId}", s.deleteRole).Methods("DELETE")

	// Overwrite mutation routes
	api.HandleFunc("/guilds/{id}/channels/{channelId}/permissions/{roleId}", s.putOverwrite).Methods("PUT")
	api.HandleFunc("/guilds/{id}/channels/{channelId}/permissions/{roleId}", s.deleteOverwrite).Methods("DELETE")
}

// Router returns the underlying mux router so callers can attach middleware
// before serving.
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

// writeDirectoryError maps the directory error taxonomy onto HTTP status
// codes. Unclassified errors are treated as unavailability.
func writeDirectoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, guild.ErrInvalid):
		httputil.WriteError(w, http.StatusBadRequest, err)
	case errors.Is(err, guild.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, err)
	case errors.Is(err, guild.ErrRejected):
		httputil.WriteDetailedError(w, http.StatusInternalServerError, err, map[string]string{
			"reason": "rejected by directory service",
		})
	default:
		httputil.WriteDetailedError(w, http.StatusInternalServerError, err, map[string]string{
			"reason": "directory service unavailable",
		})
	}
}
