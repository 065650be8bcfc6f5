package middleware

import (
	"time"

	"github.com/Jayjokeer/loyalty-api/pkg/response"

	"github.com/gin-gonic/gin"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/time/rate"
)

const visitorTTL = 5 * time.Minute

// RateLimiter 按客户端 IP 的令牌桶限流
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	visitors cmap.ConcurrentMap[string, *rate.Limiter]
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		visitors: cmap.New[*rate.Limiter](),
	}
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.obtainLimiter(c.ClientIP()).Allow() {
			response.Abort(c, response.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) obtainLimiter(id string) *rate.Limiter {
	fresh := false
	limiter := r.visitors.Upsert(id, nil, func(exist bool, old, _ *rate.Limiter) *rate.Limiter {
		if exist {
			return old
		}
		fresh = true
		return rate.NewLimiter(r.limit, r.burst)
	})
	if fresh {
		// 到期后丢弃, 下次访问重新发放完整的桶
		time.AfterFunc(visitorTTL, func() { r.visitors.Remove(id) })
	}
	return limiter
}
