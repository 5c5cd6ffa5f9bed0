// middleware/rate_limit.go
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/Payphone-Digital/storefront/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter is a sliding-window limiter keyed by client ip. Each ip's
// timestamps are kept in arrival order. Idle ips are swept at most once per
// window.
type RateLimiter struct {
	tokens     map[string][]time.Time
	maxRequest int
	duration   time.Duration
	now        func() time.Time
	lastSweep  time.Time
	mu         sync.Mutex
}

func NewRateLimiter(maxRequest int, duration time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     make(map[string][]time.Time),
		maxRequest: maxRequest,
		duration:   duration,
		now:        time.Now,
	}
}

// live drops the timestamps of tokens that fell out of the window.
func (rl *RateLimiter) live(tokens []time.Time, now time.Time) []time.Time {
	i := 0
	for i < len(tokens) && now.Sub(tokens[i]) > rl.duration {
		i++
	}
	return tokens[i:]
}

// sweep forgets ips with no request left in the window. It runs at most once
// per window.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.duration {
		return
	}
	rl.lastSweep = now

	for ip, tokens := range rl.tokens {
		if len(rl.live(tokens, now)) == 0 {
			delete(rl.tokens, ip)
		}
	}
}

// tracked is the number of ips currently held.
func (rl *RateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.tokens)
}

// Allow records a request from ip and reports whether it is within the
// limit, along with the requests left in the window.
func (rl *RateLimiter) Allow(ip string) (bool, int) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweep(now)

	tokens := rl.live(rl.tokens[ip], now)
	if len(tokens) >= rl.maxRequest {
		rl.tokens[ip] = tokens
		return false, 0
	}

	rl.tokens[ip] = append(tokens, now)
	return true, rl.maxRequest - len(tokens) - 1
}

// Middleware rejects clients above the limit with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed, remaining := rl.Allow(ip)

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.maxRequest))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(rl.now().Add(rl.duration).Unix(), 10))

		if !allowed {
			metrics.RateLimited.Inc()
			logger.GetLogger().Warn("Rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("max_requests", rl.maxRequest),
				zap.Duration("duration", rl.duration),
			)

			c.Header("Retry-After", strconv.Itoa(int(rl.duration.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, constants.BuildErrorResponse(constants.MsgTooManyRequests, nil))
			return
		}

		c.Next()
	}
}

// RateLimit builds a limiter allowing maxRequest requests per duration per ip.
func RateLimit(maxRequest int, duration time.Duration) gin.HandlerFunc {
	return NewRateLimiter(maxRequest, duration).Middleware()
}
