package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/mrlokans/bookshelf/internal/config"
)

// LockoutPolicy bounds failed logins. Account lockouts stored on the user row
// and the per-address throttle for unknown logins both follow it, so every
// failed attempt is counted exactly once.
type LockoutPolicy struct {
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
}

// PolicyFromConfig fills unset values with 5 attempts per 15m and a 30m lock.
func PolicyFromConfig(cfg config.Auth) LockoutPolicy {
	p := LockoutPolicy{
		MaxAttempts: cfg.MaxLoginAttempts,
		Window:      cfg.RateLimitWindow,
		Lockout:     cfg.LockoutDuration,
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 5
	}
	if p.Window <= 0 {
		p.Window = 15 * time.Minute
	}
	if p.Lockout <= 0 {
		p.Lockout = 30 * time.Minute
	}
	return p
}

// failureStreak is a run of failed logins inside one policy window.
type failureStreak struct {
	count       int
	since       time.Time
	lockedUntil time.Time
}

func (s failureStreak) lockedAt(now time.Time) bool {
	return now.Before(s.lockedUntil)
}

// fail adds one failure at now. A streak older than the window starts over.
func (p LockoutPolicy) fail(s failureStreak, now time.Time) failureStreak {
	if s.count == 0 || now.Sub(s.since) > p.Window {
		s = failureStreak{since: now}
	}
	s.count++
	if s.count >= p.MaxAttempts {
		s.lockedUntil = now.Add(p.Lockout)
	}
	return s
}

// stale reports whether the streak no longer affects any decision at now.
func (p LockoutPolicy) stale(s failureStreak, now time.Time) bool {
	return !s.lockedAt(now) && now.Sub(s.since) > p.Window
}

// LockoutScope says what a lockout applies to.
type LockoutScope string

const (
	LockoutAccount LockoutScope = "account"
	LockoutAddress LockoutScope = "address"
)

// LockoutError is returned by Authenticate while logins are refused.
type LockoutError struct {
	Scope LockoutScope
	Until time.Time
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("too many failed login attempts for this %s", e.Scope)
}

// RetryAfter is the time left on the lock, never negative.
func (e *LockoutError) RetryAfter(now time.Time) time.Duration {
	if d := e.Until.Sub(now); d > 0 {
		return d
	}
	return 0
}

// addressThrottle tracks failures for logins that match no account, keyed by
// client address. Known accounts are throttled through their own row instead.
// Stale entries are swept lazily once per window.
type addressThrottle struct {
	policy    LockoutPolicy
	mu        sync.Mutex
	streaks   map[string]failureStreak
	lastSweep time.Time
}

func newAddressThrottle(policy LockoutPolicy) *addressThrottle {
	return &addressThrottle{policy: policy, streaks: make(map[string]failureStreak)}
}

// lockedUntil returns the lock expiry for addr, or the zero time.
func (t *addressThrottle) lockedUntil(addr string, now time.Time) time.Time {
	if addr == "" {
		return time.Time{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.streaks[addr]; ok && s.lockedAt(now) {
		return s.lockedUntil
	}
	return time.Time{}
}

// fail records a failure for addr and returns the updated streak.
func (t *addressThrottle) fail(addr string, now time.Time) failureStreak {
	if addr == "" {
		return failureStreak{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if now.Sub(t.lastSweep) > t.policy.Window {
		t.sweepLocked(now)
	}
	s := t.policy.fail(t.streaks[addr], now)
	t.streaks[addr] = s
	return s
}

func (t *addressThrottle) sweepLocked(now time.Time) {
	for addr, s := range t.streaks {
		if t.policy.stale(s, now) {
			delete(t.streaks, addr)
		}
	}
	t.lastSweep = now
}

func (t *addressThrottle) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.streaks)
}
