// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// This package offers helper functions for JSON encoding/decoding, error responses,
// parameter parsing, and common HTTP middleware patterns.
//
// # Response Helpers
//
// JSON responses:
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteSuccess(w, projection)
//	httputil.WriteCreated(w, role)
//	httputil.WriteNoContent(w)
//
// Error responses:
//
//	httputil.WriteError(w, http.StatusBadRequest, err)
//	httputil.WriteBadRequest(w, "Invalid input")
//	httputil.WriteNotFoundError(w, "guild not found")
//	httputil.WriteDetailedError(w, http.StatusInternalServerError, err, details)
//
// # Request Parsing
//
// JSON parsing:
//
//	var req CreateRoleRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
// Path parameters:
//
//	guildID, ok := httputil.ParsePathStringOrError(w, r, "id")
//
// Query parameters:
//
//	limit, err := httputil.ParseQueryInt(r, "limit", 100)
//	format := httputil.ParseQueryString(r, "format", "json")
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.RecoveryMiddleware,
//		httputil.MaxBytesMiddleware(1024*1024), // 1MB
//	)
//
// # Related Packages
//
//   - pkg/middleware: Rate limiting middleware
package httputil
