package middleware

import (
	"fmt"
	"sync"
	"time"

	"aiharu-api/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
}

// NewRateLimiter 創建新的限流器
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: time.Now(),
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.tokens += now.Sub(rl.lastTime).Seconds() * rl.rate
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}
	rl.lastTime = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) idleSince() time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.lastTime
}

// ClientLimiter 依 client IP 分別限流
type ClientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*RateLimiter
	requests int
	window   time.Duration
}

// NewClientLimiter 創建依 IP 限流器
func NewClientLimiter(requests int, window time.Duration) *ClientLimiter {
	return &ClientLimiter{
		limiters: make(map[string]*RateLimiter),
		requests: requests,
		window:   window,
	}
}

// Allow 檢查該 client 是否還有額度
func (l *ClientLimiter) Allow(client string) bool {
	l.mu.Lock()
	rl, ok := l.limiters[client]
	if !ok {
		rl = NewRateLimiter(l.requests, l.window)
		l.limiters[client] = rl
	}
	l.mu.Unlock()
	return rl.Allow()
}

// Prune 移除閒置超過兩個視窗的 client
func (l *ClientLimiter) Prune() int {
	cutoff := time.Now().Add(-2 * l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for client, rl := range l.limiters {
		if rl.idleSince().Before(cutoff) {
			delete(l.limiters, client)
			removed++
		}
	}
	return removed
}

// RateLimit 限流中間件
func RateLimit(limiter *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", fmt.Sprintf("%d", int(limiter.window.Seconds())))
			common.RespondError(c, common.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
