package httpmiddleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces per-client request limits. When a redis client is
// provided it uses a shared fixed window so limits hold across replicas;
// otherwise it falls back to an in-process token bucket.
type RateLimiter struct {
	rdb       *redis.Client
	perMinute int

	mu    sync.Mutex
	state map[string]*bucket
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewRateLimiter creates a limiter allowing perMinute requests per client IP.
func NewRateLimiter(rdb *redis.Client, perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 120
	}
	return &RateLimiter{
		rdb:       rdb,
		perMinute: perMinute,
		state:     make(map[string]*bucket),
	}
}

// GinMiddleware returns gin handler enforcing per-IP limits.
func (l *RateLimiter) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.allow(c, ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) allow(c *gin.Context, key string) bool {
	if l.rdb != nil {
		if ok, err := l.allowRedis(c, key); err == nil {
			return ok
		}
		// redis unreachable, fall through to local bucket
	}
	return l.allowLocal(key)
}

func (l *RateLimiter) allowRedis(c *gin.Context, key string) (bool, error) {
	window := time.Now().Unix() / 60
	rkey := fmt.Sprintf("ratelimit:%s:%d", key, window)
	n, err := l.rdb.Incr(c.Request.Context(), rkey).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		l.rdb.Expire(c.Request.Context(), rkey, 2*time.Minute)
	}
	return n <= int64(l.perMinute), nil
}

func (l *RateLimiter) allowLocal(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.state[key]
	now := time.Now()
	if !ok {
		b = &bucket{tokens: l.perMinute - 1, last: now}
		l.state[key] = b
		return true
	}
	elapsed := now.Sub(b.last).Minutes()
	refill := int(elapsed * float64(l.perMinute))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.perMinute {
			b.tokens = l.perMinute
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}
