package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter is a sliding-window rate limiter backed by redis sorted sets.
// A nil client or non-positive Max/Window disables limiting entirely.
type Limiter struct {
	Client *redis.Client
	Prefix string
	Window time.Duration
	Max    int
}

// Allow registers an event under key and reports whether it fits the window.
func (l Limiter) Allow(ctx context.Context, key string) (allowed bool, remaining int, reset time.Time, err error) {
	if l.Client == nil || l.Max <= 0 || l.Window <= 0 {
		return true, l.Max, time.Now().Add(l.Window), nil
	}

	now := time.Now()
	until := now.Add(l.Window)
	cutoff := float64(now.Add(-l.Window).UnixNano())

	redisKey := l.Prefix + key
	member := fmt.Sprintf("%s:%s", key, uuid.NewString())

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("%f", cutoff))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.Window)
	if _, err = pipe.Exec(ctx); err != nil {
		return false, 0, until, err
	}

	current := int(countCmd.Val())
	remaining = l.Max - current
	if remaining < 0 {
		remaining = 0
	}
	return current <= l.Max, remaining, until, nil
}

// Middleware enforces the limit per request key before delegating. Redis
// failures fail open so the API keeps serving while the limiter is degraded.
func (l Limiter) Middleware(key func(*http.Request) string, onError func(error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == nil {
				next.ServeHTTP(w, r)
				return
			}
			allowed, remaining, resetAt, err := l.Allow(r.Context(), key(r))
			if err != nil {
				if onError != nil {
					onError(err)
				}
				next.ServeHTTP(w, r)
				return
			}

			headers := w.Header()
			headers.Set("X-RateLimit-Limit", strconv.Itoa(max(l.Max, 0)))
			headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			headers.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !allowed {
				retryAfter := int(time.Until(resetAt).Seconds())
				if retryAfter < 0 {
					retryAfter = 0
				}
				headers.Set("Retry-After", strconv.Itoa(retryAfter))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
