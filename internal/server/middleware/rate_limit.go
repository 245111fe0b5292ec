package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const sweepInterval = time.Minute

type IPRateLimiter struct {
	ips       map[string]*rateLimiterWithTime
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	expiry    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type rateLimiterWithTime struct {
	limiter   *rate.Limiter
	lastUsage time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:       make(map[string]*rateLimiterWithTime),
		rate:      r,
		burst:     b,
		expiry:    time.Hour,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// getLimiter also drops limiters idle for longer than expiry, at most once per
// sweepInterval.
func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastSweep) >= sweepInterval {
		for key, wrapper := range i.ips {
			if now.Sub(wrapper.lastUsage) > i.expiry {
				delete(i.ips, key)
			}
		}
		i.lastSweep = now
	}

	wrapper, exists := i.ips[ip]
	if !exists {
		wrapper = &rateLimiterWithTime{limiter: rate.NewLimiter(i.rate, i.burst)}
		i.ips[ip] = wrapper
	}
	wrapper.lastUsage = now

	return wrapper.limiter
}

func (i *IPRateLimiter) size() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.ips)
}

func RateLimit(rps float64, burst int) gin.HandlerFunc {
	return rateLimit(NewIPRateLimiter(rate.Limit(rps), burst))
}

func rateLimit(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.getLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many requests"})
			return
		}
		c.Next()
	}
}
