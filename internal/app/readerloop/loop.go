// Package readerloop implements ReaderLoop: the long-running task, one per
// WAL group, that drives an EntryStream through a filter chain and a
// BatchAssembler onto a bounded ready-queue, per spec.md §4.6.
package readerloop

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/sandeepvinayak/hbase/internal/app/batch"
	"github.com/sandeepvinayak/hbase/internal/app/readyqueue"
	"github.com/sandeepvinayak/hbase/internal/app/stream"
	"github.com/sandeepvinayak/hbase/internal/domain"
	"github.com/sandeepvinayak/hbase/internal/ports"
)

// Config bundles everything a Loop needs that doesn't change over its
// lifetime. Group is a label attached to every metric this loop emits.
type Config struct {
	Group string

	Queue         ports.LogQueue
	ReaderFactory ports.EntryReaderFactory
	Lengther      ports.FileLengther
	Filter        ports.EntryFilter
	Quota         ports.QuotaController
	Metrics       ports.MetricsSink
	Logger        ports.Logger
	Control       *ports.Control
	Ready         *readyqueue.Queue

	Limits batch.Limits

	// RetrySleep is the base backoff duration (retry.sleep.ms).
	RetrySleep time.Duration
	// MaxMultiplier caps the exponential backoff multiplier
	// (retry.max.multiplier).
	MaxMultiplier int
	// EOFAutorecovery enables zero-length-head removal (eof.autorecovery).
	EOFAutorecovery bool
	// Recovered marks this WAL group as a recovered (finite, no longer
	// written to) queue inherited from a failed peer.
	Recovered bool
}

// Loop is a single WAL group's reader task. It strictly owns its
// EntryStream, BatchAssembler, and last-read Position; nothing outside
// Run touches them.
type Loop struct {
	cfg        Config
	instanceID string

	inFlightQuota int64
}

// New returns a Loop ready to Run from a starting position. Each Loop gets
// a random instance ID attached to every log line it emits, so operators
// can tell two restarts of the same group apart in aggregated logs.
func New(cfg Config) *Loop {
	if cfg.RetrySleep <= 0 {
		cfg.RetrySleep = time.Second
	}
	if cfg.MaxMultiplier <= 0 {
		cfg.MaxMultiplier = 300
	}
	if cfg.Control == nil {
		cfg.Control = &ports.Control{PeerEnabled: ports.AlwaysEnabled}
	}
	if cfg.Filter == nil {
		cfg.Filter = ports.EntryFilterFunc(func(e *domain.Entry) (*domain.Entry, bool) { return e, true })
	}
	return &Loop{cfg: cfg, instanceID: uuid.NewString()}
}

func (l *Loop) logFields(extra ...ports.Field) []ports.Field {
	return append([]ports.Field{
		{Key: "group", Value: l.cfg.Group},
		{Key: "instance", Value: l.instanceID},
	}, extra...)
}

// Run drives the loop until it is cancelled, the ready-queue is closed, or
// (for a recovered queue) every entry has been shipped. A nil error on
// return from a recovered queue means clean, full termination; any other
// return is cancellation (ports.ErrInterrupted), a closed ready-queue
// (ports.ErrReadyQueueClosed), or a fatal, operator-visible condition such
// as ports.ErrCorrupt or a failure to open the start position.
func (l *Loop) Run(start domain.Position) error {
	st, err := stream.New(l.cfg.Queue, l.cfg.ReaderFactory, l.cfg.Lengther, start)
	if err != nil {
		return err
	}
	defer st.Close()

	asm := batch.New(l.cfg.Limits)
	rollCountAtReset := st.RollCount()
	multiplier := 1

	for {
		if l.cfg.Control.Stopped() {
			return l.releaseAndExit(st, asm)
		}
		if !l.cfg.Control.PeerEnabled() {
			if l.sleepBackoff(1) {
				return l.releaseAndExit(st, asm)
			}
			continue
		}
		if !l.cfg.Quota.AcquireCheck() {
			if l.sleepBackoff(multiplier) {
				return l.releaseAndExit(st, asm)
			}
			continue
		}

		drained, loopErr := l.fillBatch(st, asm)

		if loopErr != nil {
			recovered, err := l.handleReadError(st, asm, loopErr)
			if err != nil {
				return err
			}
			if recovered {
				rollCountAtReset = st.RollCount()
				multiplier = 1
				continue
			}
			multiplier = nextMultiplier(multiplier, l.cfg.MaxMultiplier)
			if l.sleepBackoff(multiplier) {
				return l.releaseAndExit(st, asm)
			}
			continue
		}

		if drained {
			// A cleanly-drained head (no error, nothing more to grow into)
			// may be the zero-length head spec.md §4.6 describes:
			// EntryStream itself never removes it, so the loop must check
			// here, not only after an explicit ErrTruncated. For any other
			// drained head tryEOFAutorecovery does nothing.
			recovered, err := l.tryEOFAutorecovery(st, asm)
			if err != nil {
				return err
			}
			if recovered {
				rollCountAtReset = st.RollCount()
				multiplier = 1
				continue
			}
		}

		rolled := st.RollCount() != rollCountAtReset
		terminal := l.cfg.Recovered && drained
		b := asm.Batch()
		shippable := !b.Empty() || rolled || terminal

		if !shippable {
			if l.sleepBackoff(1) {
				return l.releaseAndExit(st, asm)
			}
			continue
		}

		if err := l.ship(st, asm, !terminal); err != nil {
			return err
		}
		if rolled || terminal {
			l.cfg.Metrics.IncCompletedWAL(l.cfg.Group)
		}
		rollCountAtReset = st.RollCount()
		multiplier = 1

		if terminal {
			l.cfg.Metrics.IncCompletedRecoveryQueue(l.cfg.Group)
			return nil
		}
	}
}

// fillBatch runs the inner loop of spec.md §4.6: pull entries from st,
// push them through the filter chain, and accumulate the survivors into
// asm until the batch is full, the stream is drained, or an error stops
// progress.
func (l *Loop) fillBatch(st *stream.EntryStream, asm *batch.Assembler) (drained bool, err error) {
	for {
		has, err := st.HasNext()
		if err != nil {
			return false, err
		}
		if !has {
			return true, nil
		}

		entry, err := st.Next()
		if err != nil {
			return false, err
		}
		l.cfg.Metrics.IncLogEditsRead(l.cfg.Group, 1)

		filtered, ok := l.cfg.Filter.Filter(entry)
		if !ok {
			l.cfg.Metrics.IncLogEditsFiltered(l.cfg.Group, 1)
			continue
		}
		if filtered.IsEmpty() {
			continue
		}

		sizeFull := filtered.HeapSize()
		sizeQuota := filtered.QuotaSize()

		asm.Add(filtered, sizeFull)
		l.inFlightQuota += sizeQuota
		l.cfg.Metrics.IncLogReadBytes(l.cfg.Group, sizeQuota)

		overQuota := l.cfg.Quota.Add(sizeQuota)
		if overQuota || asm.FullBySize() || asm.FullByCount() {
			return false, nil
		}
	}
}

// ship finalizes the batch's end position, hands it to the ready-queue,
// and resets both the assembler and the stream (releasing reader buffers)
// for the next cycle.
func (l *Loop) ship(st *stream.EntryStream, asm *batch.Assembler, more bool) error {
	b := asm.Batch()
	pos := domain.Position{Path: st.CurrentPath(), ByteOffset: st.Position()}
	b.SetPosition(pos, more)

	if err := l.cfg.Ready.Put(b, l.cfg.Control); err != nil {
		l.cfg.Quota.Release(l.inFlightQuota)
		l.inFlightQuota = 0
		return err
	}
	l.inFlightQuota = 0

	if ts, ok := b.LastWriteTime(); ok {
		l.cfg.Metrics.SetAgeOfLastShippedOpMs(l.cfg.Group, float64(time.Since(ts).Milliseconds()))
	}

	asm.Reset()
	if err := st.Reset(); err != nil {
		return err
	}
	l.cfg.Metrics.IncRestartedWALReading(l.cfg.Group)
	return nil
}

// handleReadError implements the EOF / unclean-close policy of spec.md
// §4.6. recovered=true means the caller already restarted the stream and
// the outer loop should go around again without sleeping.
func (l *Loop) handleReadError(st *stream.EntryStream, asm *batch.Assembler, err error) (recovered bool, fatal error) {
	switch {
	case errors.Is(err, ports.ErrCorrupt):
		b := asm.Batch()
		if !b.Empty() {
			_ = l.ship(st, asm, true)
		}
		l.cfg.Logger.Error("corrupt WAL record, aborting group", err,
			l.logFields(ports.Field{Key: "path", Value: string(st.CurrentPath())})...)
		return false, err

	case errors.Is(err, ports.ErrFileNotFound):
		l.cfg.Metrics.IncUnknownFileLength(l.cfg.Group)
		return false, nil

	case errors.Is(err, ports.ErrTruncated):
		return l.tryEOFAutorecovery(st, asm)

	default:
		return false, err
	}
}

// tryEOFAutorecovery implements the zero-length-head removal policy: it
// only fires when autorecovery is enabled and the queue is either
// recovered or holds more than the stuck head file, and only when that
// head is provably empty. Everything else is treated as a transient
// truncation: the writer may still be flushing.
func (l *Loop) tryEOFAutorecovery(st *stream.EntryStream, asm *batch.Assembler) (recovered bool, fatal error) {
	eligible := l.cfg.EOFAutorecovery && (l.cfg.Recovered || l.cfg.Queue.Size() > 1)
	if !eligible {
		return false, nil
	}

	head, ok := l.cfg.Queue.Peek()
	if !ok || head != st.CurrentPath() {
		return false, nil
	}

	length, err := l.cfg.Lengther.FileLength(head)
	if err != nil || length != 0 {
		return false, nil
	}

	l.cfg.Queue.RemoveHead()
	l.cfg.Metrics.IncUncleanlyClosedWALs(l.cfg.Group)
	l.cfg.Metrics.AddBytesSkippedInUncleanlyClosedWALs(l.cfg.Group, length)

	b := asm.Batch()
	if !b.Empty() {
		more := l.cfg.Queue.Size() > 0 || !l.cfg.Recovered
		if err := l.ship(st, asm, more); err != nil {
			return false, err
		}
		if !more {
			return false, nil
		}
	}

	newHead, ok := l.cfg.Queue.Peek()
	if !ok {
		return false, nil
	}
	if err := st.ReopenAt(newHead, 0); err != nil {
		return false, err
	}
	l.cfg.Metrics.IncRestartedWALReading(l.cfg.Group)
	return true, nil
}

// releaseAndExit unwinds any quota charged to the in-progress,
// not-yet-shipped batch and releases the current EntryReader before
// returning ports.ErrInterrupted, so a cancelled loop never leaks quota
// bytes or file handles (spec.md §5). If closing the reader also fails,
// both causes are joined so neither is silently dropped.
func (l *Loop) releaseAndExit(st *stream.EntryStream, asm *batch.Assembler) error {
	if l.inFlightQuota > 0 {
		l.cfg.Quota.Release(l.inFlightQuota)
		l.inFlightQuota = 0
	}
	asm.Reset()

	result := multierror.Append(nil, ports.ErrInterrupted)
	if err := st.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	l.cfg.Logger.Info("reader loop stopped", l.logFields()...)
	return result.ErrorOrNil()
}

// sleepBackoff sleeps base*multiplier (capped implicitly by the caller's
// multiplier growth), returning true if the loop was asked to stop while
// sleeping.
func (l *Loop) sleepBackoff(multiplier int) (stopped bool) {
	d := l.cfg.RetrySleep * time.Duration(multiplier)
	var pause, cancel <-chan struct{}
	if l.cfg.Control != nil {
		pause, cancel = l.cfg.Control.Pause, l.cfg.Control.Cancel
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return false
	case <-pause:
		return true
	case <-cancel:
		return true
	}
}

func nextMultiplier(current, max int) int {
	next := current * 2
	if next > max {
		return max
	}
	if next < 1 {
		return 1
	}
	return next
}
