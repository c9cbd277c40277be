package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/picstash/picstash/api/common"
	"github.com/picstash/picstash/utils"
	"golang.org/x/time/rate"
)

type rateLimiterClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP and evicts buckets that
// have been idle longer than expireTime.
type IPRateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*rateLimiterClient
	rps        rate.Limit
	burst      int
	expireTime time.Duration
}

func NewIPRateLimiter(rps float64, burst int, expireTime time.Duration) *IPRateLimiter {
	rl := &IPRateLimiter{
		clients:    make(map[string]*rateLimiterClient),
		rps:        rate.Limit(rps),
		burst:      burst,
		expireTime: expireTime,
	}
	utils.SafeGo(rl.janitor)
	return rl
}

func (rl *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[ip]
	if !ok {
		client = &rateLimiterClient{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[ip] = client
	}
	client.lastSeen = time.Now()
	return client.limiter
}

func (rl *IPRateLimiter) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		for ip, client := range rl.clients {
			if time.Since(client.lastSeen) > rl.expireTime {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware rejects requests over the per-IP rate with 429.
func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			common.RespondError(c, http.StatusTooManyRequests, "Too many requests, please slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
