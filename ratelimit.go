package showcase

import (
	"context"
	"sync"
	"time"
)

// RateLimiter bounds attempts per key within a sliding window.
type RateLimiter interface {
	// Check records an attempt and reports true when key is still under its
	// limit. A denied attempt is not recorded.
	Check(ctx context.Context, key string) (bool, error)

	// Reset forgets every attempt recorded for key.
	Reset(ctx context.Context, key string) error
}

type RateLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
}

type LimiterOption func(l *MemoryRateLimiter)

// SetLimiterClock replaces time.Now, mostly for tests.
func SetLimiterClock(now func() time.Time) LimiterOption {
	return func(l *MemoryRateLimiter) {
		l.now = now
	}
}

// MemoryRateLimiter keeps attempt timestamps in process memory. Limits are
// per process: running several instances multiplies the effective limit.
type MemoryRateLimiter struct {
	config RateLimitConfig
	now    func() time.Time

	mu       sync.Mutex
	attempts map[string][]time.Time
}

func NewMemoryRateLimiter(config RateLimitConfig, options ...LimiterOption) *MemoryRateLimiter {
	l := &MemoryRateLimiter{
		config:   config,
		now:      time.Now,
		attempts: make(map[string][]time.Time),
	}

	for _, option := range options {
		option(l)
	}

	return l
}

// prune drops timestamps at or before cutoff. Timestamps are appended in
// order so the live ones are always a suffix.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}

	return stamps[i:]
}

func (l *MemoryRateLimiter) Check(ctx context.Context, key string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := prune(l.attempts[key], now.Add(-l.config.Window))

	if len(stamps) >= l.config.MaxAttempts {
		l.attempts[key] = stamps
		return false, nil
	}

	l.attempts[key] = append(stamps, now)
	return true, nil
}

func (l *MemoryRateLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.attempts, key)
	return nil
}

// Sweep removes keys whose attempts have all aged out and returns how many
// were removed. Check only prunes the key it touches, so idle keys would
// otherwise stay in memory forever.
func (l *MemoryRateLimiter) Sweep() int {
	cutoff := l.now().Add(-l.config.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, stamps := range l.attempts {
		if len(prune(stamps, cutoff)) == 0 {
			delete(l.attempts, key)
			removed++
		}
	}

	return removed
}
