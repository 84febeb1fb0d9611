package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a per-minute token budget using a fixed window.
// Provider quotas are expressed in tokens per minute, so the window
// resets on minute boundaries rather than refilling continuously.
type TokenLimiter struct {
	mu          sync.Mutex
	maxPerMin   int
	used        int
	windowStart time.Time
}

// NewTokenLimiter creates a limiter allowing maxPerMinute tokens each minute.
func NewTokenLimiter(maxPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		maxPerMin:   maxPerMinute,
		windowStart: time.Now(),
	}
}

// Wait blocks until tokens can be consumed from the current window or the
// context is cancelled. Requests larger than the whole budget are allowed
// through once on an empty window so they fail upstream, not here.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.mu.Lock()
		l.rollWindow()
		if l.used+tokens <= l.maxPerMin || (l.used == 0 && tokens > l.maxPerMin) {
			l.used += tokens
			l.mu.Unlock()
			return nil
		}
		waitFor := time.Until(l.windowStart.Add(time.Minute))
		l.mu.Unlock()

		if waitFor <= 0 {
			continue
		}
		timer := time.NewTimer(waitFor)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// GetRemaining returns how many tokens are left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollWindow()
	remaining := l.maxPerMin - l.used
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l *TokenLimiter) rollWindow() {
	if time.Since(l.windowStart) >= time.Minute {
		l.windowStart = time.Now()
		l.used = 0
	}
}
