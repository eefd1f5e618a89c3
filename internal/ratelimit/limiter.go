// Package ratelimit implements the per-client fixed-window limiter in front
// of the non-streaming chat endpoint. State is process-local.
package ratelimit

import (
	"math"
	"time"
)

const (
	DefaultLimit  = 20
	DefaultWindow = 60 * time.Second
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetIn is the time left until the current window expires.
	ResetIn time.Duration
}

// ResetSeconds is ResetIn rounded up to whole seconds, as sent in
// X-RateLimit-Reset and retryAfter.
func (d Decision) ResetSeconds() int {
	if d.ResetIn <= 0 {
		return 0
	}
	return int(math.Ceil(d.ResetIn.Seconds()))
}

// FixedWindow counts requests per key in windows that start at the first
// request after the previous window expired.
type FixedWindow struct {
	limit  int
	window time.Duration
	store  Store
	clock  Clock
}

type Option func(*FixedWindow)

func WithStore(s Store) Option { return func(f *FixedWindow) { f.store = s } }
func WithClock(c Clock) Option { return func(f *FixedWindow) { f.clock = c } }

func NewFixedWindow(limit int, window time.Duration, opts ...Option) *FixedWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	f := &FixedWindow{limit: limit, window: window}
	for _, o := range opts {
		o(f)
	}
	if f.store == nil {
		f.store = NewMemoryStore(DefaultMaxKeys)
	}
	if f.clock == nil {
		f.clock = SystemClock{}
	}
	return f
}

// Limit is the number of requests allowed per window.
func (f *FixedWindow) Limit() int { return f.limit }

// Allow records one request for key. A rejected request does not count.
func (f *FixedWindow) Allow(key string) Decision {
	now := f.clock.Now()
	allowed := false
	e := f.store.Update(key, func(e Entry, ok bool) Entry {
		if !ok || e.WindowStart.Before(now.Add(-f.window)) {
			e = Entry{WindowStart: now}
		}
		if e.Count < f.limit {
			e.Count++
			allowed = true
		}
		return e
	})
	return Decision{
		Allowed:   allowed,
		Limit:     f.limit,
		Remaining: f.limit - e.Count,
		ResetIn:   e.WindowStart.Add(f.window).Sub(now),
	}
}
