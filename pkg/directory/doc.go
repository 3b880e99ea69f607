// Package directory implements the guild.Source and guild.Directory contracts
// against concrete backends.
//
// # Backends
//
// RESTClient talks to the upstream directory service's HTTP API. It is the
// production backend: every read assembles a fresh snapshot (no caching, so a
// stale tree is never served) and every mutation is forwarded once, with the
// upstream's verdict propagated verbatim, with no retries or compensation.
//
// FixtureSource serves guilds from fixture files on disk and applies
// mutations in memory. It exists for local development and demos, where
// pointing at a live directory service is impractical. Files are hot-reloaded
// on change.
//
// # Error classification
//
// Both backends speak the guild package's error taxonomy: guild.ErrNotFound,
// guild.ErrRejected, guild.ErrUnavailable. Callers never see a backend's raw
// transport error without one of those sentinels wrapped around it.
package directory
