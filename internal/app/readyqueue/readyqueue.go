// Package readyqueue implements the bounded single-producer/single-consumer
// channel described in spec.md §5 between a ReaderLoop and its shipper.
package readyqueue

import (
	"sync/atomic"

	"github.com/sandeepvinayak/hbase/internal/domain"
	"github.com/sandeepvinayak/hbase/internal/ports"
)

// Queue wraps a capacity-bounded channel of batches. Unlike a bare Go
// channel, Close never closes the underlying channel (so a blocked Put
// never panics); it only marks the queue so future Puts fail fast with
// ports.ErrReadyQueueClosed.
type Queue struct {
	ch     chan *domain.Batch
	closed atomic.Bool
}

// New returns a queue with room for capacity batches (batch.queue.capacity
// in configuration; default 1).
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ch: make(chan *domain.Batch, capacity)}
}

// Put enqueues b, blocking while the queue is full. It returns early with
// ports.ErrInterrupted if ctrl's Pause or Cancel fires first, and with
// ports.ErrReadyQueueClosed if the queue has been closed.
func (q *Queue) Put(b *domain.Batch, ctrl *ports.Control) error {
	if q.closed.Load() {
		return ports.ErrReadyQueueClosed
	}

	var pause, cancel <-chan struct{}
	if ctrl != nil {
		pause, cancel = ctrl.Pause, ctrl.Cancel
	}

	select {
	case q.ch <- b:
		return nil
	case <-pause:
		return ports.ErrInterrupted
	case <-cancel:
		return ports.ErrInterrupted
	}
}

// Take removes and returns the next batch, blocking until one is
// available. Used by tests and by a standalone shipper loop.
func (q *Queue) Take() *domain.Batch {
	return <-q.ch
}

// TryTake removes and returns the next batch without blocking.
func (q *Queue) TryTake() (*domain.Batch, bool) {
	select {
	case b := <-q.ch:
		return b, true
	default:
		return nil, false
	}
}

// Close marks the queue closed; subsequent Put calls fail immediately.
// Already-buffered batches remain available via Take/TryTake.
func (q *Queue) Close() {
	q.closed.Store(true)
}

// Len returns the number of batches currently buffered.
func (q *Queue) Len() int {
	return len(q.ch)
}
