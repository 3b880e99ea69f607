// Package middleware provides HTTP rate limiting for the public API.
//
// # Overview
//
// Requests are limited per client IP with separate budgets for reads and
// mutations. Mutations get the tighter budget: each one is forwarded to the
// upstream directory service and burns its quota.
//
// RateLimitMiddleware: in-process token buckets
//
//	limiter := middleware.NewRateLimitMiddleware()
//	router.Use(limiter.Handler)
//
// DistributedRateLimitMiddleware: Redis-backed counters shared across
// instances
//
//	limiter := middleware.NewDistributedRateLimitMiddleware(redisClient)
//	router.Use(limiter.Handler)
//
// In-process buckets live in an expiring LRU, so idle clients age out
// without a cleanup goroutine. The Redis limiter fails open by default: a
// Redis outage degrades to unlimited traffic rather than a dead API.
//
// # Limits
//
// Reads: 300 req/min, 30 burst. Mutations: 60 req/min, 10 burst.
package middleware
