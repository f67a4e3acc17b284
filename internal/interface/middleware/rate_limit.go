package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blogilista/pkg/response"
)

func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit bucket key from the request.
type KeyFunc func(c *gin.Context) string

// KeyByIPAndRoute buckets writes per client IP and route, so registering and
// posting blogs do not share a quota.
func KeyByIPAndRoute(prefix string) KeyFunc {
	return func(c *gin.Context) string {
		return prefix + ":rl:" + c.Request.Method + ":" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// AllowFunc returns true when the request bypasses the limiter.
type AllowFunc func(*gin.Context) bool

// INCR and set the window on the first hit, atomically.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimiter is a fixed-window request limiter backed by Redis.
// A nil client turns it into a pass-through; Redis errors fail open.
type RateLimiter struct {
	Redis  *redis.Client
	Max    int
	Window time.Duration
	Key    KeyFunc
	Allow  AllowFunc
	Logger *logrus.Logger
}

func (l *RateLimiter) Handler() gin.HandlerFunc {
	if l == nil || l.Redis == nil || l.Max <= 0 || l.Window <= 0 || l.Key == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if l.Allow != nil && l.Allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := l.Key(c)

		count, err := incrExpireScript.Run(ctx, l.Redis, []string{key}, l.Window.Milliseconds()).Int()
		if err != nil {
			if l.Logger != nil {
				l.Logger.WithError(err).WithField("key", key).Warn("rate limit check failed")
			}
			c.Next()
			return
		}

		resetSec := 0
		if ttl, err := l.Redis.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
			resetSec = int((ttl + time.Second - 1) / time.Second)
		}
		remaining := l.Max - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > l.Max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
