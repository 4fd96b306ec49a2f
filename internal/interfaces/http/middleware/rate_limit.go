package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterCleanInterval = 5 * time.Minute
)

// IPRateLimiter 按客户端 IP 的令牌桶，空闲的桶自动过期
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

// NewIPRateLimiter perMinute <= 0 时返回 nil，表示不限流
func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &IPRateLimiter{
		limiters: cache.New(limiterIdleTTL, limiterCleanInterval),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

// Allow 判断该 IP 是否还有令牌
func (l *IPRateLimiter) Allow(ip string) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	var limiter *rate.Limiter
	if v, ok := l.limiters.Get(ip); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	// 每次访问都刷新过期时间
	l.limiters.SetDefault(ip, limiter)
	l.mu.Unlock()

	return limiter.Allow()
}

// RateLimit 超出限额返回 429
func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":    false,
				"error": "Demasiadas solicitudes. Inténtalo de nuevo en un minuto.",
			})
			return
		}
		c.Next()
	}
}
