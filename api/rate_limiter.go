package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/KK-2k06/DreamInk/core"
)

// RateLimiter blocks a key after repeated failed sign-ins. Keys are client
// IPs; successful sign-ins clear the key.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string]core.AttemptRecord
	policy   core.AttemptPolicy
	now      func() time.Time
}

// NewRateLimiter creates a limiter. Zero policy fields take the core defaults.
func NewRateLimiter(policy core.AttemptPolicy) *RateLimiter {
	def := core.DefaultAttemptPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.Window <= 0 {
		policy.Window = def.Window
	}
	if policy.Block <= 0 {
		policy.Block = def.Block
	}
	return &RateLimiter{
		attempts: make(map[string]core.AttemptRecord),
		policy:   policy,
		now:      time.Now,
	}
}

// Allow reports whether key may attempt a sign-in, and if not, for how long
// it stays blocked.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[key]
	if !ok {
		return true, 0
	}
	now := l.now()
	if rec.Blocked(now) {
		return false, rec.RetryAfter(now)
	}
	return true, 0
}

// Fail records a failed attempt for key.
func (l *RateLimiter) Fail(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[key] = l.attempts[key].Fail(l.now(), l.policy)
}

// Reset forgets key.
func (l *RateLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.attempts, key)
	l.mu.Unlock()
}

// Cleanup drops expired records and returns how many were removed.
func (l *RateLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, rec := range l.attempts {
		if rec.Expired(now) {
			delete(l.attempts, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (l *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Cleanup()
			}
		}
	}()
}

// Count returns the number of tracked keys.
func (l *RateLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}

// clientKey is the client IP without the port. middleware.RealIP has
// already applied X-Forwarded-For / X-Real-IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
