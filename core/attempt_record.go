package core

import "time"

// Sign-in throttling defaults.
const (
	DefaultAttemptWindow = 15 * time.Minute
	DefaultMaxAttempts   = 5
	DefaultBlockDuration = 30 * time.Minute
)

// AttemptPolicy bounds failed attempts per key (client IP or email).
type AttemptPolicy struct {
	MaxAttempts int
	Window      time.Duration
	Block       time.Duration
}

// DefaultAttemptPolicy returns the defaults above.
func DefaultAttemptPolicy() AttemptPolicy {
	return AttemptPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Window:      DefaultAttemptWindow,
		Block:       DefaultBlockDuration,
	}
}

// AttemptRecord counts failures for one key. It is a value; Fail returns
// the updated record.
type AttemptRecord struct {
	Count        int
	WindowEnds   time.Time
	BlockedUntil time.Time
}

// Expired reports whether the record carries no state at now and can be
// dropped.
func (a AttemptRecord) Expired(now time.Time) bool {
	return !now.Before(a.WindowEnds) && !now.Before(a.BlockedUntil)
}

// Blocked reports whether the key is locked out at now.
func (a AttemptRecord) Blocked(now time.Time) bool {
	return now.Before(a.BlockedUntil)
}

// RetryAfter returns how long the key stays blocked, or zero.
func (a AttemptRecord) RetryAfter(now time.Time) time.Duration {
	return max(a.BlockedUntil.Sub(now), 0)
}

// Fail records a failed attempt at now. Reaching MaxAttempts inside the
// window blocks the key for p.Block and starts a fresh count.
func (a AttemptRecord) Fail(now time.Time, p AttemptPolicy) AttemptRecord {
	if !now.Before(a.WindowEnds) {
		a.Count = 0
		a.WindowEnds = now.Add(p.Window)
	}
	a.Count++
	if a.Count >= p.MaxAttempts {
		a.BlockedUntil = now.Add(p.Block)
		a.Count = 0
		a.WindowEnds = now
	}
	return a
}
