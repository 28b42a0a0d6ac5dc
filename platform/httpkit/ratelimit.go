package httpkit

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"timeclock_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether a request from the given client may proceed.
type Limiter interface {
	Allow(ctx context.Context, clientIP string) bool
}

// IPRateLimiter manages per-IP token bucket limiters in process memory.
// Suitable for single-instance deployments; multi-instance deployments should
// prefer RedisRateLimiter so all instances share one budget.
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
}

// NewIPRateLimiter creates a new in-process IP rate limiter.
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{rate: r, burst: burst}
}

// Allow reports whether the client may proceed.
func (i *IPRateLimiter) Allow(_ context.Context, clientIP string) bool {
	limiter, exists := i.limiters.Load(clientIP)
	if !exists {
		limiter, _ = i.limiters.LoadOrStore(clientIP, rate.NewLimiter(i.rate, i.burst))
	}
	return limiter.(*rate.Limiter).Allow()
}

// RedisRateLimiter is a fixed-window per-IP limiter backed by Redis, shared
// across all running instances.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisClient connects a Redis client from a redis:// or rediss:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// NewRedisRateLimiter creates a Redis-backed limiter allowing limit requests
// per window per client.
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit",
	}
}

// Allow reports whether the client may proceed. On Redis failure the request
// is allowed: throttling is protective, not load-bearing.
func (r *RedisRateLimiter) Allow(ctx context.Context, clientIP string) bool {
	key := fmt.Sprintf("%s:%s:%d", r.prefix, clientIP, time.Now().Unix()/int64(r.window.Seconds()))

	pipe := r.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true
	}

	return count.Val() <= int64(r.limit)
}

// RateLimit returns middleware that throttles requests by client IP using the
// provided limiter.
func RateLimit(limiter Limiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.Allow(c.Request.Context(), ip) {
			if log != nil {
				log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}

// Compile-time checks that both limiters implement Limiter.
var (
	_ Limiter = (*IPRateLimiter)(nil)
	_ Limiter = (*RedisRateLimiter)(nil)
)
