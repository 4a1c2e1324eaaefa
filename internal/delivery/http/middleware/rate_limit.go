package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-recruitment-platform/internal/delivery/http/response"
	"go-recruitment-platform/internal/domain"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit  int
	Window time.Duration
	// Key extractor (default: client IP)
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// Reject requests when Redis is unavailable instead of falling back
	FailClosed bool
	// Skip exempts requests from this limiter
	Skip func(*gin.Context) bool
}

// rateLimitEntry tracks request count for a key (in-memory fallback)
type rateLimitEntry struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// RateLimiter counts requests in Redis when a client is configured and in
// process memory otherwise.
type RateLimiter struct {
	redis  *goredis.Client
	audit  domain.AuditLogger
	memory sync.Map
	now    func() time.Time
}

func NewRateLimiter(client *goredis.Client, audit domain.AuditLogger) *RateLimiter {
	return &RateLimiter{redis: client, audit: audit, now: time.Now}
}

// GlobalConfig limits every request per client IP.
func GlobalConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:ip:",
		KeyFunc:   func(c *gin.Context) string { return c.ClientIP() },
	}
}

// WriteConfig limits mutating requests per viewer, or per IP for anonymous
// callers.
func WriteConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:write:",
		KeyFunc: func(c *gin.Context) string {
			if id := c.GetString(string(domain.KeyUserID)); id != "" {
				return "user:" + id
			}
			return "ip:" + c.ClientIP()
		},
		Skip: func(c *gin.Context) bool { return isSafeMethod(c.Request.Method) },
	}
}

// UploadConfig caps file uploads per viewer. Uploads are refused while the
// shared counter store is unreachable.
func UploadConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:      limit,
		Window:     window,
		KeyPrefix:  "rl:upload:",
		KeyFunc:    func(c *gin.Context) string { return c.GetString(string(domain.KeyUserID)) },
		FailClosed: true,
		Skip:       func(c *gin.Context) bool { return c.Request.Method != http.MethodPost },
	}
}

// Middleware enforces config. A limit of zero or less disables it.
func (l *RateLimiter) Middleware(config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.Limit <= 0 || (config.Skip != nil && config.Skip(c)) {
			c.Next()
			return
		}

		key := config.KeyPrefix + config.KeyFunc(c)
		count, resetAt, err := l.hit(c.Request.Context(), key, config)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "Rate limit store unavailable", "error", err)
			if config.FailClosed {
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
				c.Abort()
				return
			}
			count, resetAt = l.hitInMemory(key, config)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(resetAt.Sub(l.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			if l.audit != nil {
				l.audit.Record(c.Request.Context(), domain.AuditEvent{
					Action:    domain.AuditRateLimited,
					ActorID:   c.GetString(string(domain.KeyUserID)),
					Subject:   c.FullPath(),
					RequestID: c.GetString(response.RequestIDKey),
					Details:   map[string]any{"ip": c.ClientIP(), "limiter": config.KeyPrefix},
				})
			}
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.Limit-count))
		c.Next()
	}
}

func (l *RateLimiter) hit(ctx context.Context, key string, config RateLimitConfig) (int, time.Time, error) {
	if l.redis == nil {
		count, resetAt := l.hitInMemory(key, config)
		return count, resetAt, nil
	}
	return l.hitRedis(ctx, key, config)
}

// hitRedis checks rate limit using Redis with atomic Lua script
func (l *RateLimiter) hitRedis(ctx context.Context, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	result, err := l.redis.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), l.now().Add(time.Duration(ttl) * time.Second), nil
}

func (l *RateLimiter) hitInMemory(key string, config RateLimitConfig) (int, time.Time) {
	now := l.now()
	entryI, _ := l.memory.LoadOrStore(key, &rateLimitEntry{resetAt: now.Add(config.Window)})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(config.Window)
	}
	entry.count++
	return entry.count, entry.resetAt
}

// Cleanup removes expired in-memory entries every interval until ctx is done.
func (l *RateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := l.now()
			l.memory.Range(func(key, value interface{}) bool {
				entry := value.(*rateLimitEntry)
				entry.mu.Lock()
				if now.After(entry.resetAt) {
					l.memory.Delete(key)
				}
				entry.mu.Unlock()
				return true
			})
		}
	}
}
