package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "github.com/kbukum/voicemap/errors"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests allowed per minute
	// per client. Zero disables limiting.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	// PathPrefix restricts limiting to matching paths, e.g. "/api/".
	PathPrefix string `yaml:"path_prefix" mapstructure:"path_prefix"`
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*http.Request) string `yaml:"-" mapstructure:"-"`
}

// RateLimit returns middleware that applies per-key sliding-window rate
// limiting and answers RATE_LIMITED when a key exceeds its budget.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
	}

	rl := &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    cfg.RequestsPerMinute,
		now:      time.Now,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.PathPrefix != "" && !strings.HasPrefix(r.URL.Path, cfg.PathPrefix) {
				next.ServeHTTP(w, r)
				return
			}
			if !rl.allow(cfg.KeyFunc(r)) {
				w.Header().Set("Retry-After", "60")
				writeError(w, apperrors.RateLimited())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For address, or the remote host.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type rateLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	limit     int
	now       func() time.Time
	lastSweep time.Time
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-time.Minute)
	if now.Sub(rl.lastSweep) > 5*time.Minute {
		rl.sweep(cutoff)
		rl.lastSweep = now
	}

	valid := filterByTime(rl.requests[key], cutoff)
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

// sweep drops keys with no requests in the current window.
func (rl *rateLimiter) sweep(cutoff time.Time) {
	for key, times := range rl.requests {
		valid := filterByTime(times, cutoff)
		if len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func filterByTime(times []time.Time, cutoff time.Time) []time.Time {
	var result []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}
