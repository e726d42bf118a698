// Package ratelimit provides an in-process sliding-window request
// limiter keyed by caller identity. It is an explicitly owned component
// meant to be injected into handlers rather than shared module state.
package ratelimit

import (
	"container/list"
	"sync"
	"time"
)

// Clock returns the current time; swap it in tests to control the window.
type Clock func() time.Time

// DefaultMaxKeys bounds the key set. Without a bound the ledger grows
// with every identity ever seen; least-recently-used keys are evicted
// once the bound is reached.
const DefaultMaxKeys = 10000

type entry struct {
	key   string
	times []time.Time
	elem  *list.Element
}

// Limiter admits at most limit calls per key within a rolling window.
// The read-prune-append step runs under a single mutex so concurrent
// calls for the same key can never both observe a stale count.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	maxKeys int
	clock   Clock
	entries map[string]*entry
	lru     *list.List // front = most recently used
}

type Option func(*Limiter)

// WithClock replaces the wall clock, for tests.
func WithClock(c Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// WithMaxKeys overrides the LRU bound on tracked identities.
func WithMaxKeys(n int) Option {
	return func(l *Limiter) { l.maxKeys = n }
}

func New(limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		limit:   limit,
		window:  window,
		maxKeys: DefaultMaxKeys,
		clock:   time.Now,
		entries: make(map[string]*entry),
		lru:     list.New(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Allow reports whether a request for key is admitted now. When denied,
// retryAfter is the time until the oldest retained request exits the
// window; denied requests are not recorded.
func (l *Limiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	now := l.clock()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[key]
	if e == nil {
		e = &entry{key: key}
		e.elem = l.lru.PushFront(e)
		l.entries[key] = e
		l.evictLocked()
	} else {
		l.lru.MoveToFront(e.elem)
	}

	// Prune timestamps that have left the window.
	kept := e.times[:0]
	for _, t := range e.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	e.times = kept

	if len(e.times) >= l.limit {
		wait := e.times[0].Add(l.window).Sub(now)
		if wait < 0 {
			wait = 0
		}
		return false, wait
	}
	e.times = append(e.times, now)
	return true, 0
}

// Len reports the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Limiter) evictLocked() {
	for len(l.entries) > l.maxKeys {
		back := l.lru.Back()
		if back == nil {
			return
		}
		e := back.Value.(*entry)
		l.lru.Remove(back)
		delete(l.entries, e.key)
	}
}

// RetryAfterSeconds rounds a wait duration up to whole seconds for the
// Retry-After response field, never reporting less than one second for
// a denied request.
func RetryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
