// Package ratelimit implements a per key fixed window request counter.
//
// Each key owns a window guarded by its own mutex; no lock is ever held
// across keys. A request is admitted while the window count is below the
// permit limit. There is no queueing, excess requests are rejected at once.
package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultPermitLimit = 5
	DefaultWindow      = time.Minute

	// UnknownKey partitions requests whose client address cannot be read.
	UnknownKey = "unknown"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // zero when Allowed
}

type window struct {
	mu    sync.Mutex
	count int
	start time.Time
	dead  bool // pruned, callers must load a fresh window
}

type Limiter struct {
	limit   int
	period  time.Duration
	now     func() time.Time
	windows sync.Map // string -> *window
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New returns a limiter admitting limit requests per key every period.
// Non positive arguments fall back to the defaults.
func New(limit int, period time.Duration, opts ...Option) *Limiter {
	if limit <= 0 {
		limit = DefaultPermitLimit
	}
	if period <= 0 {
		period = DefaultWindow
	}
	l := &Limiter{limit: limit, period: period, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow counts one request for key. The check and the increment are atomic
// per key.
func (l *Limiter) Allow(key string) Decision {
	if key == "" {
		key = UnknownKey
	}

	for {
		w := l.load(key)

		w.mu.Lock()
		if w.dead {
			w.mu.Unlock()
			continue
		}
		d := l.admit(w)
		w.mu.Unlock()
		return d
	}
}

func (l *Limiter) load(key string) *window {
	if v, ok := l.windows.Load(key); ok {
		return v.(*window)
	}
	v, _ := l.windows.LoadOrStore(key, &window{})
	return v.(*window)
}

// admit must be called with w.mu held.
func (l *Limiter) admit(w *window) Decision {
	now := l.now()
	if w.start.IsZero() || now.Sub(w.start) >= l.period {
		w.start = now
		w.count = 0
	}

	if w.count < l.limit {
		w.count++
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - w.count}
	}

	retry := w.start.Add(l.period).Sub(now)
	if retry <= 0 {
		retry = time.Nanosecond
	}
	return Decision{Allowed: false, Limit: l.limit, Remaining: 0, RetryAfter: retry}
}

// Prune drops windows that elapsed. It returns the number of windows removed.
func (l *Limiter) Prune() int {
	now := l.now()
	removed := 0
	l.windows.Range(func(k, v any) bool {
		w := v.(*window)
		w.mu.Lock()
		if !w.dead && now.Sub(w.start) >= l.period {
			w.dead = true
			l.windows.CompareAndDelete(k, w)
			removed++
		}
		w.mu.Unlock()
		return true
	})
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	n := 0
	l.windows.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (l *Limiter) Limit() int {
	return l.limit
}

func (l *Limiter) Window() time.Duration {
	return l.period
}
