package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
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
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, limit int, period time.Duration) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return New(limit, period, WithClock(clock.Now)), clock
}

func TestAllow_SixthRequestRejected(t *testing.T) {
	l, clock := newTestLimiter(t, 5, time.Minute)

	for i := 1; i <= 5; i++ {
		d := l.Allow("203.0.113.7")
		if !d.Allowed {
			t.Fatalf("request %d rejected", i)
		}
		if d.Remaining != 5-i {
			t.Errorf("request %d: Remaining = %d, want %d", i, d.Remaining, 5-i)
		}
	}

	clock.Advance(20 * time.Second)
	d := l.Allow("203.0.113.7")
	if d.Allowed {
		t.Fatal("6th request in the window should be rejected")
	}
	if d.RetryAfter != 40*time.Second {
		t.Errorf("RetryAfter = %v, want 40s", d.RetryAfter)
	}
	if d.Limit != 5 || d.Remaining != 0 {
		t.Errorf("unexpected decision %+v", d)
	}
}

func TestAllow_ResetsAfterWindow(t *testing.T) {
	l, clock := newTestLimiter(t, 2, time.Minute)

	l.Allow("k")
	l.Allow("k")
	if l.Allow("k").Allowed {
		t.Fatal("third request should be rejected")
	}

	clock.Advance(time.Minute)
	d := l.Allow("k")
	if !d.Allowed {
		t.Fatal("first request of the new window should be admitted")
	}
	if d.Remaining != 1 {
		t.Errorf("Remaining = %d, want 1", d.Remaining)
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)

	if !l.Allow("a").Allowed {
		t.Fatal("a should be admitted")
	}
	if l.Allow("a").Allowed {
		t.Fatal("a should be rejected")
	}
	if !l.Allow("b").Allowed {
		t.Error("b must not be affected by a")
	}
}

func TestAllow_EmptyKeyUsesUnknownPartition(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)

	l.Allow("")
	if l.Allow(UnknownKey).Allowed {
		t.Error("empty key and UnknownKey should share a window")
	}
}

func TestAllow_ConcurrentBurstNeverOverAdmits(t *testing.T) {
	l, _ := newTestLimiter(t, 5, time.Minute)

	const workers = 200
	var (
		wg       sync.WaitGroup
		admitted atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if l.Allow("burst").Allowed {
				admitted.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if admitted.Load() != 5 {
		t.Errorf("admitted %d requests, want exactly 5", admitted.Load())
	}
}

func TestAllow_ConcurrentWithPrune(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute)

	stop := make(chan struct{})
	var pruner sync.WaitGroup
	pruner.Add(1)
	go func() {
		defer pruner.Done()
		for {
			select {
			case <-stop:
				return
			default:
				l.Prune()
			}
		}
	}()

	var (
		wg       sync.WaitGroup
		admitted atomic.Int32
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("x").Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	close(stop)
	pruner.Wait()

	// the clock never moves, a pruned window must not hand out new permits
	if admitted.Load() != 3 {
		t.Errorf("admitted %d, want 3", admitted.Load())
	}
}

func TestPrune(t *testing.T) {
	l, clock := newTestLimiter(t, 5, time.Minute)

	l.Allow("old")
	clock.Advance(30 * time.Second)
	l.Allow("new")

	if n := l.Prune(); n != 0 {
		t.Errorf("nothing elapsed yet, pruned %d", n)
	}

	clock.Advance(30 * time.Second)
	if n := l.Prune(); n != 1 {
		t.Errorf("expected to prune 1 window, pruned %d", n)
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 tracked key, got %d", l.Len())
	}

	if !l.Allow("old").Allowed {
		t.Error("pruned key should start a fresh window")
	}
}

func TestNew_Defaults(t *testing.T) {
	l := New(0, 0)
	if l.Limit() != DefaultPermitLimit || l.Window() != DefaultWindow {
		t.Errorf("got limit %d window %v", l.Limit(), l.Window())
	}
}
