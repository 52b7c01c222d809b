// Package telemetry traces builds with OpenTelemetry and reports spans to the logger.
package telemetry

import (
	"bytes"
	"sync"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultEventBytes is how much bundler output one span event holds
	// before it is emitted early.
	DefaultEventBytes = 4 << 10
	// DefaultEventInterval is the longest output waits before it is emitted.
	DefaultEventInterval = 50 * time.Millisecond
)

var errOutputClosed = zerr.New("span output is closed")

// OutputBatcher groups bundler output into span events.
//
// Output is held until eventBytes accumulate or interval passes since the
// first unsent write. A size-triggered event ends on the last complete line
// so bundler messages are not split across events.
type OutputBatcher struct {
	eventBytes int
	interval   time.Duration
	emit       func(string)

	mu      sync.Mutex
	pending []byte
	timer   *time.Timer
	closed  bool
}

// NewOutputBatcher returns an OutputBatcher calling emit for every event.
// Non-positive limits fall back to the defaults.
func NewOutputBatcher(eventBytes int, interval time.Duration, emit func(string)) *OutputBatcher {
	if eventBytes <= 0 {
		eventBytes = DefaultEventBytes
	}
	if interval <= 0 {
		interval = DefaultEventInterval
	}
	return &OutputBatcher{
		eventBytes: eventBytes,
		interval:   interval,
		emit:       emit,
	}
}

// Write buffers p. It fails once the batcher is closed.
func (b *OutputBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, errOutputClosed
	}

	b.pending = append(b.pending, p...)
	if len(b.pending) >= b.eventBytes {
		cut := bytes.LastIndexByte(b.pending, '\n') + 1
		if cut == 0 {
			cut = len(b.pending)
		}
		b.emitLocked(cut)
	}

	if len(b.pending) > 0 && b.timer == nil {
		b.timer = time.AfterFunc(b.interval, b.Flush)
	}
	return len(p), nil
}

// Flush emits everything buffered.
func (b *OutputBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

// Close emits the remaining output. Later writes fail.
func (b *OutputBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.flushLocked()
	return nil
}

func (b *OutputBatcher) flushLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.emitLocked(len(b.pending))
}

// emitLocked sends the first n pending bytes as one event.
func (b *OutputBatcher) emitLocked(n int) {
	if n == 0 {
		return
	}
	event := string(b.pending[:n])
	b.pending = append(b.pending[:0], b.pending[n:]...)
	if b.emit != nil {
		b.emit(event)
	}
}
