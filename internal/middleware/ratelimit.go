package middleware

import (
	"net/http"
	"sync"
	"time"

	"bust-order-backend/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// defaultIdleTTL must stay longer than the time a bucket needs to refill,
// otherwise eviction would hand a throttled client a fresh bucket early.
const defaultIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. Clients idle for longer
// than idleTTL are dropped on the next sweep.
type RateLimiter struct {
	mu        sync.Mutex
	ips       map[string]*visitor
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		ips:       make(map[string]*visitor),
		rate:      r,
		burst:     burst,
		idleTTL:   defaultIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		rl.sweep(now)
	}

	v, ok := rl.ips[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.ips[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (rl *RateLimiter) sweep(now time.Time) {
	for ip, v := range rl.ips {
		if now.Sub(v.lastSeen) >= rl.idleTTL {
			delete(rl.ips, ip)
		}
	}
	rl.lastSweep = now
}

// Middleware answers 429 once a client exhausts its bucket.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "Too many requests",
				Message: "please wait before trying again",
			})
			return
		}
		c.Next()
	}
}
