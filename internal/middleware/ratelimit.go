package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/serenify-journal/pkg/clientip"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitKeyPrefix is the Redis key prefix for windowed counters.
const RateLimitKeyPrefix = "ratelimit:"

// WindowLimiter counts requests per user (or IP) in fixed Redis windows so
// the limit holds across server instances.
type WindowLimiter struct {
	client     *redis.Client
	name       string
	window     time.Duration
	max        int64
	trustProxy bool
	log        *zap.Logger
	now        func() time.Time
}

func NewWindowLimiter(client *redis.Client, name string, window time.Duration, max int64, trustProxy bool, log *zap.Logger) *WindowLimiter {
	return &WindowLimiter{
		client:     client,
		name:       name,
		window:     window,
		max:        max,
		trustProxy: trustProxy,
		log:        log,
		now:        time.Now,
	}
}

// Allow increments key's counter, starting the window on the first hit.
func (l *WindowLimiter) Allow(ctx context.Context, key string) (int64, bool, error) {
	redisKey := RateLimitKeyPrefix + l.name + ":" + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, true, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return count, true, err
		}
	}
	return count, count <= l.max, nil
}

// Middleware rejects requests over the limit with 429. Redis failures let
// the request through.
func (l *WindowLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + clientip.FromRequest(r, l.trustProxy)
		if id, ok := UserID(r.Context()); ok {
			key = "user:" + id.String()
		}

		count, ok, err := l.Allow(r.Context(), key)
		if err != nil {
			l.log.Warn("rate limiter unavailable", zap.String("limiter", l.name), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		remaining := l.max - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(l.max, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(l.now().Add(l.window).Unix(), 10))

		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
