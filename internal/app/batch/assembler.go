// Package batch implements BatchAssembler: accumulation of filtered
// entries into a domain.Batch bounded by count and heap-size. The shared
// QuotaController is checked by the ReaderLoop, not by the Assembler.
package batch

import "github.com/sandeepvinayak/hbase/internal/domain"

// Limits bounds a single batch, mirroring the batch.size.capacity and
// batch.count.capacity configuration keys.
type Limits struct {
	SizeCapacityBytes int64
	CountCapacity     int
}

// Assembler accumulates entries into the current domain.Batch and decides
// when it is full. It holds no I/O state; the ReaderLoop drives it one
// entry at a time.
type Assembler struct {
	limits Limits
	batch  *domain.Batch
}

// New returns an Assembler with a fresh empty Batch.
func New(limits Limits) *Assembler {
	return &Assembler{limits: limits, batch: domain.NewBatch()}
}

// Batch returns the batch being assembled.
func (a *Assembler) Batch() *domain.Batch { return a.batch }

// Add records entry into the current batch, where heapSizeUsed is the
// caller-computed size-including-bulk-load for this entry (§4.5).
func (a *Assembler) Add(entry *domain.Entry, heapSizeUsed int64) {
	a.batch.AddEntry(entry, heapSizeUsed)
}

// FullBySize reports whether the batch has reached its configured
// heap-size capacity.
func (a *Assembler) FullBySize() bool {
	return a.batch.FullBySize(a.limits.SizeCapacityBytes)
}

// FullByCount reports whether the batch has reached its configured
// entry-count capacity.
func (a *Assembler) FullByCount() bool {
	return a.batch.FullByCount(a.limits.CountCapacity)
}

// Reset discards the current batch and starts a new empty one, called
// after the ReaderLoop has handed the previous batch to the ready-queue.
func (a *Assembler) Reset() {
	a.batch = domain.NewBatch()
}
