package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/kbx/kbx-api/internal/pkg/response"
)

// RateLimitConfig configures the token bucket limiter
type RateLimitConfig struct {
	Enabled  bool
	Capacity int
	Refill   time.Duration // interval at which one token is restored
}

// tokenBucketScript refills and consumes atomically so concurrent requests
// against the same key cannot over-consume.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals)
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RateLimit returns a per-client token bucket middleware backed by Redis.
// When Redis is unavailable the request is let through.
func RateLimit(cfg RateLimitConfig, rdb *redis.Client) func(http.Handler) http.Handler {
	if !cfg.Enabled || rdb == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	ttl := 5 * cfg.Refill * time.Duration(cfg.Capacity)
	if ttl < time.Minute {
		ttl = time.Minute
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "rl:" + rateKey(r)

			vals, err := tokenBucketScript.Run(r.Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.Refill.Milliseconds(),
				int64(ttl/time.Second),
			).Int64Slice()
			if err != nil || len(vals) != 3 {
				if err != nil {
					log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
				}
				next.ServeHTTP(w, r)
				return
			}

			remaining := vals[1]
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if vals[0] != 1 {
				retryAfter := time.Duration(vals[2]) * time.Millisecond
				seconds := int64(retryAfter / time.Second)
				if retryAfter%time.Second != 0 {
					seconds++
				}
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
				response.TooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateKey buckets by authenticated user when available, client IP otherwise
func rateKey(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != uuid.Nil {
		return "user:" + userID.String()
	}
	return "ip:" + getClientIP(r)
}
