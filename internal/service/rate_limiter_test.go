package service

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRateLimiter_Policies(t *testing.T) {
	cases := []struct {
		policy RateLimitPolicy
		max    int
	}{
		{SendOTPPolicy, 1},
		{VerifyOTPPolicy, 5},
		{ForgotPasswordPolicy, 3},
	}
	for _, tc := range cases {
		t.Run(tc.policy.Name, func(t *testing.T) {
			now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			l := NewMemoryRateLimiter(tc.policy).(*memoryRateLimiter)
			l.now = func() time.Time { return now }
			ctx := context.Background()

			for i := 0; i < tc.max; i++ {
				if !l.Allow(ctx, "10.0.0.1") {
					t.Fatalf("call %d should be allowed", i+1)
				}
			}
			if l.Allow(ctx, "10.0.0.1") {
				t.Fatalf("call %d should be blocked", tc.max+1)
			}
			if !l.Allow(ctx, "10.0.0.2") {
				t.Fatalf("other keys should not share the budget")
			}

			now = now.Add(tc.policy.Window - time.Second)
			if l.Allow(ctx, "10.0.0.1") {
				t.Fatalf("expected block until the window elapses")
			}
			now = now.Add(time.Second)
			if !l.Allow(ctx, "10.0.0.1") {
				t.Fatalf("expected budget to recover after the window")
			}
		})
	}
}

func TestMemoryRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemoryRateLimiter(ForgotPasswordPolicy).(*memoryRateLimiter)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	l.Allow(ctx, "ip")
	now = now.Add(30 * time.Minute)
	l.Allow(ctx, "ip")
	l.Allow(ctx, "ip")
	if l.Allow(ctx, "ip") {
		t.Fatalf("fourth call within the hour should be blocked")
	}

	now = now.Add(31 * time.Minute)
	if !l.Allow(ctx, "ip") {
		t.Fatalf("oldest hit left the window, expected one free slot")
	}
	if l.Allow(ctx, "ip") {
		t.Fatalf("expected only one slot to free up")
	}
}

func TestMemoryRateLimiter_SweepsIdleKeys(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemoryRateLimiter(SendOTPPolicy).(*memoryRateLimiter)
	l.now = func() time.Time { return now }
	for i := 0; i <= sweepThreshold; i++ {
		l.hits[string(rune(i))+"-idle"] = []time.Time{now}
	}

	now = now.Add(2 * time.Minute)
	l.Allow(context.Background(), "fresh")
	if len(l.hits) != 1 {
		t.Fatalf("expected idle keys swept, got %d", len(l.hits))
	}
}
