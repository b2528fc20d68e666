package ratelimiter

import (
	"sync"
	"time"
)

// Limiter lets through at most one event per interval, for example one
// progress log line per second while a body is streamed.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

// New creates a limiter that allows one event per interval.
func New(interval time.Duration) *Limiter {
	return NewWithClock(interval, time.Now)
}

// NewWithClock creates a limiter that reads the time from now.
func NewWithClock(interval time.Duration, now func() time.Time) *Limiter {
	return &Limiter{
		interval: interval,
		now:      now,
	}
}

// Allow reports whether an event may happen now and, if so, records it.
// When it may not, the remaining wait is returned.
func (l *Limiter) Allow() (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.last.IsZero() || now.Sub(l.last) >= l.interval {
		l.last = now
		return true, 0
	}

	return false, l.interval - now.Sub(l.last)
}

// Prime records an event at the current time without asking, so the next
// Allow succeeds only after a full interval.
func (l *Limiter) Prime() {
	l.mu.Lock()
	l.last = l.now()
	l.mu.Unlock()
}
