package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shareit-platform/service-booking/pkg/response"
	"golang.org/x/time/rate"
)

type rateLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newRateLimiter(requestsPerMin int) *rateLimiter {
	burst := requestsPerMin / 10
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](10000, nil, 5*time.Minute),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burst,
	}
}

func (rl *rateLimiter) allow(key string) bool {
	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Add(key, limiter)
	}
	return limiter.Allow()
}

// RateLimit throttles each caller, keyed by user id header or client IP, to
// requestsPerMin. A non-positive limit disables throttling.
func RateLimit(requestsPerMin int) gin.HandlerFunc {
	if requestsPerMin <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	rl := newRateLimiter(requestsPerMin)
	return func(c *gin.Context) {
		key := c.GetHeader(UserIDHeader)
		if key == "" {
			key = c.ClientIP()
		}
		if !rl.allow(key) {
			response.TooManyRequests(c, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
