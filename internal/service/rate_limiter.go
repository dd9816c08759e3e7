package service

import (
	"context"
	"sync"
	"time"
)

// RateLimiter limita la frecuencia de llamadas por clave.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimitPolicy describe el tope de llamadas por ventana de una operacion.
type RateLimitPolicy struct {
	Name    string
	Max     int
	Window  time.Duration
	Message string
}

var (
	SendOTPPolicy = RateLimitPolicy{
		Name:    "send-otp",
		Max:     1,
		Window:  time.Minute,
		Message: "Too many OTP requests. Please wait a minute before requesting another code.",
	}
	VerifyOTPPolicy = RateLimitPolicy{
		Name:    "verify-otp",
		Max:     5,
		Window:  10 * time.Minute,
		Message: "Too many verification attempts. Please try again in 10 minutes.",
	}
	ForgotPasswordPolicy = RateLimitPolicy{
		Name:    "forgot-password",
		Max:     3,
		Window:  time.Hour,
		Message: "Too many password reset requests. Please try again in an hour.",
	}
)

func (p RateLimitPolicy) normalized() RateLimitPolicy {
	if p.Max <= 0 {
		p.Max = 1
	}
	if p.Window <= 0 {
		p.Window = time.Minute
	}
	return p
}

// sweepThreshold acota cuantas claves se acumulan antes de barrer las inactivas.
const sweepThreshold = 10000

type memoryRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time
	now    func() time.Time
}

// NewMemoryRateLimiter crea un rate limiter en memoria con ventana deslizante.
func NewMemoryRateLimiter(policy RateLimitPolicy) RateLimiter {
	policy = policy.normalized()
	return &memoryRateLimiter{
		window: policy.Window,
		max:    policy.Max,
		hits:   make(map[string][]time.Time),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *memoryRateLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	cutoff := now.Add(-l.window)
	if len(l.hits) > sweepThreshold {
		l.sweep(cutoff)
	}
	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	kept = append(kept, now)
	l.hits[key] = kept
	return true
}

func (l *memoryRateLimiter) sweep(cutoff time.Time) {
	for key, entries := range l.hits {
		if len(entries) == 0 || !entries[len(entries)-1].After(cutoff) {
			delete(l.hits, key)
		}
	}
}
