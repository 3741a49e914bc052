package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HammerMeetNail/readshelf/internal/logging"
)

// KeyFunc derives the rate limit bucket for a request.
type KeyFunc func(r *http.Request) string

// counterFunc increments the counter at key and returns the new value.
type counterFunc func(ctx context.Context, key string, window time.Duration) (int64, error)

// RateLimiter is a fixed-window limiter backed by Redis.
type RateLimiter struct {
	increment counterFunc
	limit     int
	window    time.Duration
	prefix    string
	keyFunc   KeyFunc
	failOpen  bool
	now       func() time.Time
}

// NewRateLimiter builds a limiter. A nil client disables limiting entirely.
// With failOpen, Redis errors let the request through; otherwise they yield 503.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string, keyFunc KeyFunc, failOpen bool) *RateLimiter {
	var increment counterFunc
	if client != nil {
		increment = redisCounter(client)
	}
	if keyFunc == nil {
		keyFunc = GetClientIP
	}
	return &RateLimiter{
		increment: increment,
		limit:     limit,
		window:    window,
		prefix:    prefix,
		keyFunc:   keyFunc,
		failOpen:  failOpen,
		now:       time.Now,
	}
}

// NewAuthRateLimiter limits credential endpoints per client IP.
func NewAuthRateLimiter(client *redis.Client, perMinute int) *RateLimiter {
	return NewRateLimiter(client, perMinute, time.Minute, "ratelimit:auth:", GetClientIP, true)
}

func redisCounter(client *redis.Client) counterFunc {
	return func(ctx context.Context, key string, window time.Duration) (int64, error) {
		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			return 0, err
		}
		if count == 1 {
			if err := client.Expire(ctx, key, window).Err(); err != nil {
				return 0, err
			}
		}
		return count, nil
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.increment == nil {
			next.ServeHTTP(w, r)
			return
		}

		now := rl.now()
		windowStart := now.Truncate(rl.window)
		resetAt := windowStart.Add(rl.window)
		key := fmt.Sprintf("%s%s:%d", rl.prefix, rl.keyFunc(r), windowStart.Unix())

		count, err := rl.increment(r.Context(), key, rl.window)
		if err != nil {
			logging.Warn("Rate limiter unavailable", logging.Fields{"error": err, "key": key})
			if rl.failOpen {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
			return
		}

		remaining := rl.limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if int(count) > rl.limit {
			retryAfter := int(resetAt.Sub(now).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then RemoteAddr.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if host, _, err := net.SplitHostPort(first); err == nil {
			return host
		}
		if first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
