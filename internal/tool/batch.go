package tool

import (
	"sync"
	"time"

	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
)

// Batcher accumulates stroke vertices and flushes them as one
// continue-stroke message per interval. An interval of zero sends every
// vertex as it arrives.
//
// The flush timer runs on its own goroutine, so every method locks.
type Batcher struct {
	mu       sync.Mutex
	out      Sender
	interval time.Duration
	pending  []state.Vertex
	done     chan struct{}
}

// NewBatcher creates a batcher flushing every interval.
func NewBatcher(out Sender, interval time.Duration) *Batcher {
	b := &Batcher{out: out}
	b.SetInterval(interval)
	return b
}

// Begin flushes whatever is left of the previous stroke, then sends msg.
func (b *Batcher) Begin(msg protocol.Payload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
	b.out.Send(msg)
}

// Add queues v for the next flush.
func (b *Batcher) Add(v state.Vertex) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, v)
	if b.interval == 0 {
		b.flushLocked()
	}
}

// ReplaceLast overwrites the most recent vertex. When it is still pending the
// batch is edited in place; otherwise it was already sent and the server is
// asked to move it.
func (b *Batcher) ReplaceLast(v state.Vertex) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := len(b.pending); n > 0 {
		b.pending[n-1] = v
		return
	}
	b.out.Send(&protocol.MoveLastVertex{X: v.X, Y: v.Y})
}

// Flush sends the pending vertices now.
func (b *Batcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

func (b *Batcher) flushLocked() {
	if len(b.pending) == 0 {
		return
	}
	b.out.Send(&protocol.ContinueStroke{Vertices: protocol.FlattenVertices(b.pending)})
	b.pending = nil
}

// Discard drops the unsent vertices.
func (b *Batcher) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = nil
}

// Pending returns the number of unsent vertices.
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Interval returns the current flush period.
func (b *Batcher) Interval() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.interval
}

// SetInterval stops the running timer, flushes, and schedules a new one.
// At most one timer is ever live.
func (b *Batcher) SetInterval(d time.Duration) {
	if d < 0 {
		d = 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	b.flushLocked()
	b.interval = d
	if d == 0 {
		return
	}
	done := make(chan struct{})
	b.done = done
	go b.run(time.NewTicker(d), done)
}

func (b *Batcher) run(t *time.Ticker, done chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			b.mu.Lock()
			if b.done != done {
				b.mu.Unlock()
				return
			}
			b.flushLocked()
			b.mu.Unlock()
		}
	}
}

func (b *Batcher) stopLocked() {
	if b.done != nil {
		close(b.done)
		b.done = nil
	}
}

// Close stops the timer and flushes.
func (b *Batcher) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
	b.flushLocked()
}
