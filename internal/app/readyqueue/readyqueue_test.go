package readyqueue

import (
	"errors"
	"testing"
	"time"

	"github.com/sandeepvinayak/hbase/internal/domain"
	"github.com/sandeepvinayak/hbase/internal/ports"
)

func TestQueuePutTakeRoundTrip(t *testing.T) {
	q := New(2)
	b := domain.NewBatch()

	if err := q.Put(b, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got := q.Take(); got != b {
		t.Fatalf("Take() = %v, want %v", got, b)
	}
}

func TestQueueTryTakeOnEmpty(t *testing.T) {
	q := New(1)
	if _, ok := q.TryTake(); ok {
		t.Fatal("expected TryTake() false on an empty queue")
	}
}

func TestQueueMinimumCapacityIsOne(t *testing.T) {
	q := New(0)
	if err := q.Put(domain.NewBatch(), nil); err != nil {
		t.Fatalf("Put on zero-capacity request (clamped to 1): %v", err)
	}
}

func TestQueuePutBlocksUntilCancel(t *testing.T) {
	q := New(1)
	q.Put(domain.NewBatch(), nil) // fill the only slot

	cancel := make(chan struct{})
	ctrl := &ports.Control{Cancel: cancel}

	errCh := make(chan error, 1)
	go func() {
		errCh <- q.Put(domain.NewBatch(), ctrl)
	}()

	select {
	case <-errCh:
		t.Fatal("expected Put to block while the queue is full")
	case <-time.After(50 * time.Millisecond):
	}

	close(cancel)

	select {
	case err := <-errCh:
		if !errors.Is(err, ports.ErrInterrupted) {
			t.Fatalf("Put() after cancel = %v, want ErrInterrupted", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected Put to return promptly after cancel")
	}
}

func TestQueuePutFailsFastOnceClosed(t *testing.T) {
	q := New(1)
	q.Close()

	if err := q.Put(domain.NewBatch(), nil); !errors.Is(err, ports.ErrReadyQueueClosed) {
		t.Fatalf("Put() on closed queue = %v, want ErrReadyQueueClosed", err)
	}
}

func TestQueueCloseDoesNotDropBufferedBatches(t *testing.T) {
	q := New(2)
	b := domain.NewBatch()
	if err := q.Put(b, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	q.Close()

	got, ok := q.TryTake()
	if !ok || got != b {
		t.Fatalf("TryTake() after Close = (%v, %v), want the already-buffered batch", got, ok)
	}
}

func TestQueueLenReflectsBuffered(t *testing.T) {
	q := New(3)
	q.Put(domain.NewBatch(), nil)
	q.Put(domain.NewBatch(), nil)

	if got, want := q.Len(), 2; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
}
