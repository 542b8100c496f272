package config

import (
	"sync"
	"time"
)

// connRateLimit tracks the rate limit window for one connection
type connRateLimit struct {
	messageCount int
	windowStart  time.Time
}

// RateLimiter manages message rate limiting per connection
type RateLimiter struct {
	limits map[string]*connRateLimit
	mutex  sync.Mutex
	config *ServerConfig
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config *ServerConfig) *RateLimiter {
	return &RateLimiter{
		limits: make(map[string]*connRateLimit),
		config: config,
	}
}

// Allow reports whether the connection may send another message
// within the current window.
func (rl *RateLimiter) Allow(connID string) bool {
	if !rl.config.EnableRateLimit {
		return true
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()

	limit, exists := rl.limits[connID]
	if !exists {
		limit = &connRateLimit{windowStart: now}
		rl.limits[connID] = limit
	}

	// Reset window เมื่อหมดเวลา
	if now.Sub(limit.windowStart) > rl.config.RateLimitWindow {
		limit.messageCount = 0
		limit.windowStart = now
	}

	if limit.messageCount >= rl.config.RateLimitMessages {
		return false
	}

	limit.messageCount++
	return true
}

// Forget drops rate limit state for a closed connection
func (rl *RateLimiter) Forget(connID string) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	delete(rl.limits, connID)
}
