package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestAllowUpToLimitThenDeny(t *testing.T) {
	clk := newFakeClock()
	l := New(15, time.Minute, WithClock(clk.Now))

	for i := 0; i < 15; i++ {
		ok, _ := l.Allow("user-1")
		require.True(t, ok, "request %d should be admitted", i+1)
		clk.Advance(time.Second)
	}

	ok, retry := l.Allow("user-1")
	assert.False(t, ok, "16th request within the window must be denied")
	assert.Greater(t, retry, time.Duration(0))
	// Oldest entry is 15s old, so it exits the window in 45s.
	assert.Equal(t, 45*time.Second, retry)
}

func TestAdmissionResumesAfterWindow(t *testing.T) {
	clk := newFakeClock()
	l := New(3, time.Minute, WithClock(clk.Now))

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("u")
		require.True(t, ok)
	}
	ok, _ := l.Allow("u")
	require.False(t, ok)

	clk.Advance(time.Minute + time.Millisecond)
	ok, _ = l.Allow("u")
	assert.True(t, ok, "admission should resume once the window elapses")
}

func TestDeniedRequestsAreNotRecorded(t *testing.T) {
	clk := newFakeClock()
	l := New(2, time.Minute, WithClock(clk.Now))

	l.Allow("u")
	l.Allow("u")
	for i := 0; i < 10; i++ {
		ok, _ := l.Allow("u")
		require.False(t, ok)
	}
	// Denied attempts must not extend the window.
	clk.Advance(time.Minute + time.Millisecond)
	ok, _ := l.Allow("u")
	assert.True(t, ok)
}

func TestKeysAreIndependent(t *testing.T) {
	clk := newFakeClock()
	l := New(1, time.Minute, WithClock(clk.Now))

	ok, _ := l.Allow("a")
	require.True(t, ok)
	ok, _ = l.Allow("a")
	require.False(t, ok)

	ok, _ = l.Allow("b")
	assert.True(t, ok, "a second identity gets its own ledger")
}

func TestConcurrentAdmissionsNeverExceedLimit(t *testing.T) {
	const n = 100
	l := New(15, time.Minute)

	var admitted atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if ok, _ := l.Allow("fresh"); ok {
				admitted.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(15), admitted.Load(), "exactly min(N, limit) admissions")
}

func TestLRUEvictionBoundsKeySet(t *testing.T) {
	clk := newFakeClock()
	l := New(1, time.Minute, WithClock(clk.Now), WithMaxKeys(3))

	l.Allow("a")
	l.Allow("b")
	l.Allow("c")
	l.Allow("d") // evicts a
	assert.Equal(t, 3, l.Len())

	// "a" was evicted, so its ledger is gone and it is admitted again.
	ok, _ := l.Allow("a")
	assert.True(t, ok)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, RetryAfterSeconds(0))
	assert.Equal(t, 1, RetryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, 2, RetryAfterSeconds(1100*time.Millisecond))
	assert.Equal(t, 45, RetryAfterSeconds(45*time.Second))
}
