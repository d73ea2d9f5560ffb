// Package poll provides the cancellable timer resource behind the
// await-response fallback: acquired when the backend reports an
// asynchronous computation in progress, released on state change or screen
// teardown. Callbacks stop the instant Stop returns; no orphaned ticks.
package poll

import (
	"sync"
	"time"
)

// Ticker is the minimal ticker surface the poller needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. Tests inject a manual clock.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

type realClock struct{}

func (realClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// RealClock returns a Clock backed by time.Ticker.
func RealClock() Clock { return realClock{} }

// Poller invokes a callback at a fixed interval until stopped.
type Poller struct {
	clock Clock

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// New creates a Poller using the given clock.
func New(clock Clock) *Poller {
	if clock == nil {
		clock = RealClock()
	}
	return &Poller{clock: clock}
}

// Start begins invoking fn every interval. A running poller is restarted.
func (p *Poller) Start(interval time.Duration, fn func()) {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	stop := make(chan struct{})
	done := make(chan struct{})
	p.stop = stop
	p.done = done
	p.running = true

	ticker := p.clock.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				// A tick racing Stop must not fire the callback.
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()
}

// Stop cancels polling and waits for any in-progress callback to return.
// Safe to call multiple times and from any goroutine except fn itself.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stop)
	done := p.done
	p.mu.Unlock()

	<-done
}

// Running reports whether the poller is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
