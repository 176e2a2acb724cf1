package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_DisabledWhenRateIsZero(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	if rl != nil {
		t.Fatal("expected nil limiter for zero rate")
	}
	if !rl.Allow() {
		t.Error("nil limiter should always allow")
	}
	if err := rl.Wait(context.Background()); err != nil {
		t.Errorf("nil limiter should never block, got %v", err)
	}
}

func TestRateLimiter_BurstThenReject(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 3})
	clock := time.Unix(0, 0)
	rl.now = func() time.Time { return clock }
	rl.lastRefill = clock

	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}
	if rl.Allow() {
		t.Error("request over burst should be rejected")
	}

	clock = clock.Add(time.Second)
	if !rl.Allow() {
		t.Error("expected a token after one second at rate 1")
	}
}

func TestRateLimiter_WaitBlocksUntilRefill(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 100, Burst: 1})
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first wait should pass immediately: %v", err)
	}
	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("second wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("expected to wait for a refill, waited %v", elapsed)
	}
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1})
	rl.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
