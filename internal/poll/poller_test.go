package poll

import (
	"sync"
	"testing"
	"time"
)

// fakeTicker is a hand-cranked ticker for deterministic tests.
type fakeTicker struct {
	ch      chan time.Time
	stopped bool
	mu      sync.Mutex
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeTicker) tick() {
	f.ch <- time.Now()
}

type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *fakeClock) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *fakeClock) last() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickers[len(f.tickers)-1]
}

func TestPoller_InvokesCallbackPerTick(t *testing.T) {
	clock := &fakeClock{}
	p := New(clock)

	calls := make(chan struct{}, 10)
	p.Start(30*time.Second, func() { calls <- struct{}{} })
	defer p.Stop()

	ticker := clock.last()
	for i := 0; i < 3; i++ {
		ticker.tick()
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatalf("tick %d: callback not invoked", i)
		}
	}
}

func TestPoller_NoCallbackAfterStop(t *testing.T) {
	clock := &fakeClock{}
	p := New(clock)

	var mu sync.Mutex
	count := 0
	p.Start(30*time.Second, func() {
		mu.Lock()
		count++
		mu.Unlock()
	})

	ticker := clock.last()
	p.Stop()

	// A tick delivered after Stop must be dropped, not fired.
	select {
	case ticker.ch <- time.Now():
		t.Fatal("ticker channel still consumed after Stop")
	default:
	}

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("callback ran %d times after Stop, want 0", count)
	}

	ticker.mu.Lock()
	defer ticker.mu.Unlock()
	if !ticker.stopped {
		t.Error("underlying ticker not stopped")
	}
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := New(&fakeClock{})
	p.Stop() // never started

	p.Start(30*time.Second, func() {})
	p.Stop()
	p.Stop()

	if p.Running() {
		t.Error("Running = true after Stop")
	}
}

func TestPoller_RestartUsesFreshTicker(t *testing.T) {
	clock := &fakeClock{}
	p := New(clock)

	first := make(chan struct{}, 1)
	p.Start(30*time.Second, func() { first <- struct{}{} })

	second := make(chan struct{}, 1)
	p.Start(30*time.Second, func() { second <- struct{}{} })
	defer p.Stop()

	if len(clock.tickers) != 2 {
		t.Fatalf("tickers created = %d, want 2", len(clock.tickers))
	}

	clock.last().tick()
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("restarted poller did not invoke new callback")
	}
	select {
	case <-first:
		t.Error("old callback fired after restart")
	default:
	}
}

func TestPoller_Running(t *testing.T) {
	p := New(&fakeClock{})
	if p.Running() {
		t.Error("Running = true before Start")
	}
	p.Start(30*time.Second, func() {})
	if !p.Running() {
		t.Error("Running = false after Start")
	}
	p.Stop()
	if p.Running() {
		t.Error("Running = true after Stop")
	}
}
