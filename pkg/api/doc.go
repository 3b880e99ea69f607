// Package api implements the public JSON-over-HTTP surface: guild reads
// (hierarchy projection), the permission flag catalog, and role/overwrite
// mutations brokered to the directory service.
//
// Routes are rooted at /api and served by a gorilla/mux router:
//
//	GET    /api/guilds
//	GET    /api/guilds/{id}
//	GET    /api/permissions
//	POST   /api/guilds/{id}/roles
//	PATCH  /api/guilds/{id}/roles
//	PATCH  /api/guilds/{id}/roles/{roleId}
//	DELETE /api/guilds/{id}/roles/{roleId}
//	PUT    /api/guilds/{id}/channels/{channelId}/permissions/{roleId}
//	DELETE /api/guilds/{id}/channels/{channelId}/permissions/{roleId}
//
// Directory errors map onto status codes uniformly: guild.ErrInvalid is 400,
// guild.ErrNotFound is 404, and guild.ErrRejected / guild.ErrUnavailable are
// 500 carrying the upstream detail in the error body. All bitfields cross
// the wire as decimal strings.
//
// Health and metrics endpoints live on a separate internal server; see
// pkg/observability.
package api
