package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures a token bucket.
type RateLimiterConfig struct {
	// Rate is the number of requests allowed per second. Zero disables limiting.
	Rate float64 `yaml:"rate" mapstructure:"rate"`
	// Burst is the maximum burst size.
	Burst int `yaml:"burst" mapstructure:"burst"`
}

// RateLimiter spaces outgoing requests with a token bucket. A nil
// *RateLimiter never blocks.
type RateLimiter struct {
	rate  float64
	burst float64
	now   func() time.Time

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter returns nil when cfg.Rate is not positive.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		return nil
	}
	if cfg.Burst <= 0 {
		cfg.Burst = max(1, int(cfg.Rate))
	}
	rl := &RateLimiter{rate: cfg.Rate, burst: float64(cfg.Burst), now: time.Now}
	rl.tokens = rl.burst
	rl.lastRefill = rl.now()
	return rl
}

// Allow takes a token if one is available.
func (rl *RateLimiter) Allow() bool {
	if rl == nil {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is done. The token is
// reserved before sleeping so concurrent waiters queue in order.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	rl.mu.Lock()
	rl.refill()
	rl.tokens--
	var wait time.Duration
	if rl.tokens < 0 {
		wait = time.Duration(-rl.tokens / rl.rate * float64(time.Second))
	}
	rl.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	if err := SleepContext(ctx, wait); err != nil {
		rl.mu.Lock()
		rl.tokens++
		rl.mu.Unlock()
		return err
	}
	return nil
}

func (rl *RateLimiter) refill() {
	now := rl.now()
	rl.tokens += now.Sub(rl.lastRefill).Seconds() * rl.rate
	rl.lastRefill = now
	if rl.tokens > rl.burst {
		rl.tokens = rl.burst
	}
}
