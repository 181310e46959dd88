package app

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and takes a token atomically. It returns
// {allowed, remaining tokens, milliseconds until the next refill}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + (intervals * refill_tokens))
		last_refill = last_refill + (intervals * interval_ms)
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

type rateDecision struct {
	allowed    bool
	remaining  int64
	retryAfter time.Duration
}

// rateLimit throttles reservation attempts per user with a token bucket kept
// in Redis. When Redis cannot answer the request is let through.
func (app *Application) rateLimit(next http.Handler) http.Handler {
	cfg := app.config.RateLimit
	if !cfg.Enabled || app.redis == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := app.contextGetLogger(r)
		requester := app.contextGetRequester(r)

		key := strings.Join([]string{cfg.Prefix, "user", requester.UserID, "reserve"}, ":")

		decision, err := app.takeToken(r.Context(), key, time.Now())
		if err != nil {
			logger.Warn("rate limiter unavailable", "key", key, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.remaining, 10))

		if !decision.allowed {
			secs := int(math.Ceil(decision.retryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(secs))

			logger.Info("rate limit exceeded", "key", key)
			app.rateLimitExceededResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) takeToken(ctx context.Context, key string, now time.Time) (rateDecision, error) {
	cfg := app.config.RateLimit

	args := []any{
		now.UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(),
		int64(cfg.TTL / time.Second),
	}

	vals, err := tokenBucketScript.Run(ctx, app.redis, []string{key}, args...).Int64Slice()
	if err != nil {
		return rateDecision{}, err
	}

	if len(vals) != 3 {
		return rateDecision{}, fmt.Errorf("unexpected rate limit script result: %v", vals)
	}

	return rateDecision{
		allowed:    vals[0] == 1,
		remaining:  vals[1],
		retryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}
