/**
 * @description
 * Distributed per-customer rate limiting for mutation endpoints, backed by
 * Redis. A Lua script increments a fixed-window counter and sets its expiry
 * atomically, so the limit holds across service instances.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9: The Redis client.
 */

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RateLimiter limits mutation requests per customer within a fixed window.
type RateLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
}

// NewRateLimiter creates a Redis-backed rate limiter. A nil client or a
// non-positive limit disables limiting.
func NewRateLimiter(client redis.UniversalClient, prefix string, limit int, window time.Duration) *RateLimiter {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "beneficiaries:rate_limit"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	return &RateLimiter{
		client: client,
		prefix: trimmedPrefix,
		limit:  limit,
		window: window,
	}
}

// Handler wraps mutation routes. Requests beyond the window limit get a 429
// with a Retry-After header. Redis unavailability fails open: the request
// proceeds rather than blocking legitimate traffic on limiter health.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl == nil || rl.client == nil || rl.limit <= 0 || rl.window <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		customerID := GetCustomerIDFromContext(r.Context())
		if customerID == "" {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.prefix + ":mutations:" + customerID
		windowMs := rl.window.Milliseconds()
		if windowMs < 1000 {
			windowMs = 1000
		}

		rawResult, err := rateLimitScript.Run(r.Context(), rl.client, []string{key}, windowMs).Result()
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		values, ok := rawResult.([]interface{})
		if !ok || len(values) != 2 {
			next.ServeHTTP(w, r)
			return
		}
		count, countOK := values[0].(int64)
		ttlMs, ttlOK := values[1].(int64)
		if !countOK || !ttlOK {
			next.ServeHTTP(w, r)
			return
		}

		if int(count) > rl.limit {
			retryAfter := int(math.Ceil(float64(ttlMs) / 1000.0))
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
