package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// RateLimitConfig defines rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerWindow is the max requests allowed in the time window
	RequestsPerWindow int
	// WindowDuration is the time window for rate limiting
	WindowDuration time.Duration
	// BurstSize allows temporary bursts above the rate
	BurstSize int
	// MaxClients bounds the bucket table; least recently seen clients are
	// evicted first
	MaxClients int
}

// DefaultRateLimitConfig returns limits for read routes
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerWindow: 300,
		WindowDuration:    time.Minute,
		BurstSize:         30,
		MaxClients:        4096,
	}
}

// MutationRateLimitConfig returns limits for mutation routes. These are
// tighter than read limits: every mutation burns upstream directory quota.
func MutationRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerWindow: 60,
		WindowDuration:    time.Minute,
		BurstSize:         10,
		MaxClients:        4096,
	}
}

// RateLimiter implements a token bucket per client. Buckets live in an
// expiring LRU so idle clients age out without a cleanup goroutine.
type RateLimiter struct {
	config  *RateLimitConfig
	buckets *expirable.LRU[string, *bucket]
}

type bucket struct {
	tokens     float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	return &RateLimiter{
		config:  config,
		buckets: expirable.NewLRU[string, *bucket](config.MaxClients, nil, config.WindowDuration*2),
	}
}

func (rl *RateLimiter) maxTokens() float64 {
	return float64(rl.config.RequestsPerWindow + rl.config.BurstSize)
}

// Allow checks if a request is allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()

	b, ok := rl.buckets.Get(key)
	if !ok {
		b = &bucket{tokens: rl.maxTokens(), lastUpdate: now}
		rl.buckets.Add(key, b)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Refill tokens for the elapsed time.
	elapsed := now.Sub(b.lastUpdate)
	refill := elapsed.Seconds() * float64(rl.config.RequestsPerWindow) / rl.config.WindowDuration.Seconds()
	b.tokens += refill
	if b.tokens > rl.maxTokens() {
		b.tokens = rl.maxTokens()
	}
	b.lastUpdate = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Remaining returns the number of remaining tokens for a key
func (rl *RateLimiter) Remaining(key string) int {
	b, ok := rl.buckets.Get(key)
	if !ok {
		return int(rl.maxTokens())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tokens < 0 {
		return 0
	}
	return int(b.tokens)
}

// RateLimitMiddleware provides HTTP rate limiting keyed by client IP, with
// separate budgets for reads and mutations.
type RateLimitMiddleware struct {
	readLimiter     *RateLimiter
	mutationLimiter *RateLimiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware() *RateLimitMiddleware {
	return &RateLimitMiddleware{
		readLimiter:     NewRateLimiter(DefaultRateLimitConfig()),
		mutationLimiter: NewRateLimiter(MutationRateLimitConfig()),
	}
}

// limiterFor selects the budget for a request. Anything that can write to
// the directory counts against the mutation budget.
func (m *RateLimitMiddleware) limiterFor(r *http.Request) *RateLimiter {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return m.readLimiter
	default:
		return m.mutationLimiter
	}
}

// Handler wraps an HTTP handler with rate limiting
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := m.limiterFor(r)
		key := "ip:" + getClientIP(r)

		if !limiter.Allow(key) {
			rateLimitExceeded(w, limiter.config)
			return
		}

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.config.RequestsPerWindow))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", limiter.Remaining(key)))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(limiter.config.WindowDuration).Unix()))

		next.ServeHTTP(w, r)
	})
}

func rateLimitExceeded(w http.ResponseWriter, config *RateLimitConfig) {
	retryAfter := config.WindowDuration.Seconds()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", fmt.Sprintf("%.0f", retryAfter))
	w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", config.RequestsPerWindow))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(config.WindowDuration).Unix()))
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"error":"rate limit exceeded","retry_after":` + fmt.Sprintf("%.0f", retryAfter) + `}`))
}

func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (if behind proxy)
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		return forwarded
	}

	// Check X-Real-IP header
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	// Use remote address
	return r.RemoteAddr
}
