package sim

import (
	"context"
	"sync"
	"time"
)

// Loop turns host frame timestamps into Sim.Frame calls. It suspends while
// the host window is hidden or unfocused and resynchronizes its clock on
// return so no time jump reaches the simulation.
type Loop struct {
	sim *Sim

	mu      sync.Mutex
	last    time.Time
	hidden  bool
	blurred bool
	stopped bool
	done    chan struct{}
}

// NewLoop wraps sm.
func NewLoop(sm *Sim) *Loop {
	return &Loop{sim: sm, done: make(chan struct{})}
}

// Sim returns the driven simulation.
func (l *Loop) Sim() *Sim { return l.sim }

// Frame advances the simulation by the time since the previous frame and
// reports whether it stepped. The first frame after start or resume only
// records the timestamp.
func (l *Loop) Frame(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped || l.hidden || l.blurred {
		l.last = time.Time{}
		return false
	}
	if l.last.IsZero() {
		l.last = now
		l.sim.Frame(0)
		return false
	}
	dt := now.Sub(l.last)
	l.last = now
	if dt < 0 {
		dt = 0
	}
	l.sim.Frame(dt)
	return true
}

// SetVisible records document visibility.
func (l *Loop) SetVisible(v bool) {
	l.mu.Lock()
	l.hidden = !v
	l.last = time.Time{}
	l.mu.Unlock()
}

// SetFocused records window focus.
func (l *Loop) SetFocused(f bool) {
	l.mu.Lock()
	l.blurred = !f
	l.last = time.Time{}
	l.mu.Unlock()
}

// Suspended reports whether frames are currently ignored.
func (l *Loop) Suspended() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped || l.hidden || l.blurred
}

// Stop ends the loop. Further calls are no-ops.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	close(l.done)
}

// Done is closed by Stop.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run consumes frame timestamps until ctx ends, frames closes or Stop is
// called. draw runs after every frame, suspended or not, so the last image
// stays on screen.
func (l *Loop) Run(ctx context.Context, frames <-chan time.Time, draw func()) error {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return nil
		case now, ok := <-frames:
			if !ok {
				l.Stop()
				return nil
			}
			l.Frame(now)
			if draw != nil {
				draw()
			}
		}
	}
}
