// Package debounce delays build requests until module discovery goes quiet.
package debounce

import (
	"sync"
	"time"
)

// State is the gate's state.
type State uint8

const (
	// Idle means no signal is waiting for its quiet window.
	Idle State = iota
	// Armed means a ready event will fire at the deadline unless re-armed.
	Armed
)

// String returns the state name.
func (s State) String() string {
	if s == Armed {
		return "armed"
	}
	return "idle"
}

// Gate emits at most one ready event per quiet window.
// Every Signal restarts the window.
type Gate struct {
	window  time.Duration
	onReady func()

	mu       sync.Mutex
	timer    *time.Timer
	deadline time.Time
	gen      uint64
	stopped  bool

	// running counts ready callbacks that have not returned.
	running sync.WaitGroup
}

// NewGate creates an idle gate that calls onReady once the window elapses
// without a new signal.
func NewGate(window time.Duration, onReady func()) *Gate {
	return &Gate{
		window:  window,
		onReady: onReady,
	}
}

// Signal arms the gate, or re-arms it with a fresh deadline when already armed.
// Signals after Stop are ignored.
func (g *Gate) Signal() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return
	}
	if g.timer != nil {
		g.timer.Stop()
	}

	// A timer that already fired but has not taken the lock yet sees a newer
	// generation and drops its event.
	g.gen++
	gen := g.gen
	g.deadline = time.Now().Add(g.window)
	g.timer = time.AfterFunc(g.window, func() { g.fire(gen) })
}

func (g *Gate) fire(gen uint64) {
	g.mu.Lock()
	if g.stopped || gen != g.gen {
		g.mu.Unlock()
		return
	}
	g.timer = nil
	g.deadline = time.Time{}
	g.running.Add(1)
	g.mu.Unlock()

	defer g.running.Done()
	if g.onReady != nil {
		g.onReady()
	}
}

// State returns the current state and, when armed, the deadline.
func (g *Gate) State() (State, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.timer == nil {
		return Idle, time.Time{}
	}
	return Armed, g.deadline
}

// Stop cancels a pending ready event and waits for a ready callback that is
// already running to return. No event fires after Stop returns. Stop must
// not be called from the ready callback.
func (g *Gate) Stop() {
	g.mu.Lock()
	g.stopped = true
	g.gen++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.deadline = time.Time{}
	g.mu.Unlock()

	g.running.Wait()
}
