// Package logqueue implements ports.LogQueue: a FIFO of WAL file paths
// shared between many writer-side roll callbacks and one ReaderLoop.
package logqueue

import (
	"os"
	"sync"
	"time"

	"github.com/sandeepvinayak/hbase/internal/domain"
	"github.com/sandeepvinayak/hbase/internal/ports"
)

// Queue is a mutex-guarded FIFO. Insertion order is strictly preserved;
// RemoveHead is the only way an entry leaves other than never being added.
type Queue struct {
	mu    sync.Mutex
	paths []domain.LogPath

	group   string
	metrics ports.MetricsSink
}

// New returns an empty queue for the named WAL group. metrics may be nil,
// in which case gauge/counter updates are skipped.
func New(group string, metrics ports.MetricsSink) *Queue {
	return &Queue{group: group, metrics: metrics}
}

// Enqueue appends path to the tail and updates size_of_log_queue and
// oldest_wal_age_ms.
func (q *Queue) Enqueue(path domain.LogPath) {
	q.mu.Lock()
	q.paths = append(q.paths, path)
	size := len(q.paths)
	head := q.paths[0]
	q.mu.Unlock()

	if q.metrics == nil {
		return
	}
	q.metrics.SetSizeOfLogQueue(q.group, size)
	if age, ok := oldestWALAgeMs(head); ok {
		q.metrics.SetOldestWALAgeMs(q.group, age)
	} else {
		q.metrics.IncUnknownFileLength(q.group)
	}
}

// Peek returns the head without removing it.
func (q *Queue) Peek() (domain.LogPath, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.paths) == 0 {
		return "", false
	}
	return q.paths[0], true
}

// RemoveHead drops the head. Only the owning ReaderLoop may call this.
func (q *Queue) RemoveHead() {
	q.mu.Lock()
	if len(q.paths) > 0 {
		q.paths = q.paths[1:]
	}
	size := len(q.paths)
	q.mu.Unlock()

	if q.metrics != nil {
		q.metrics.SetSizeOfLogQueue(q.group, size)
	}
}

// Size returns the current queue length.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.paths)
}

func oldestWALAgeMs(path domain.LogPath) (float64, bool) {
	info, err := os.Stat(string(path))
	if err != nil {
		return 0, false
	}
	return float64(time.Since(info.ModTime()).Milliseconds()), true
}

var _ ports.LogQueue = (*Queue)(nil)
