package domain

import (
	"bytes"
	"time"
)

// SizedEntry pairs an Entry with the heap-size estimate it was accounted
// under when added to a Batch (inline bytes + bulk-load file bytes).
type SizedEntry struct {
	Entry        *Entry
	HeapSizeUsed int64
}

// Batch holds an ordered list of filtered entries plus aggregated stats.
// It is mutated only by the BatchAssembler; once handed to the ready-queue
// it must not be mutated further.
type Batch struct {
	Entries []SizedEntry

	NbEntries    int
	NbRowKeys    int
	NbHFileRefs  int
	HeapSize     int64

	// EndPosition is the position immediately after the last entry added
	// to this batch (or, for an empty batch emitted after a roll with
	// nothing replicable, the position the stream advanced to).
	EndPosition Position

	// MoreEntries is false only when this batch is the final batch of a
	// fully drained recovered queue.
	MoreEntries bool

	lastRowKey []byte
}

// NewBatch returns an empty batch ready for AddEntry calls.
func NewBatch() *Batch {
	return &Batch{MoreEntries: true}
}

// Empty reports whether no entries have been added yet.
func (b *Batch) Empty() bool {
	return b.NbEntries == 0
}

// AddEntry appends entry to the batch, updating heap size and row-key /
// bulk-load-ref statistics. heapSizeUsed is the caller-computed
// size-including-bulk-load for this entry (§4.6).
func (b *Batch) AddEntry(e *Entry, heapSizeUsed int64) {
	b.Entries = append(b.Entries, SizedEntry{Entry: e, HeapSizeUsed: heapSizeUsed})
	b.NbEntries++
	b.HeapSize += heapSizeUsed
	b.NbHFileRefs += e.BulkLoadFileCount()

	if len(e.RowKey) > 0 && !bytes.Equal(e.RowKey, b.lastRowKey) {
		b.NbRowKeys++
		b.lastRowKey = e.RowKey
	}
}

// FullBySize reports whether the batch has reached its configured
// heap-size capacity.
func (b *Batch) FullBySize(sizeCapacity int64) bool {
	return b.HeapSize >= sizeCapacity
}

// FullByCount reports whether the batch has reached its configured
// entry-count capacity.
func (b *Batch) FullByCount(countCapacity int) bool {
	return b.NbEntries >= countCapacity
}

// SetPosition records the position the batch ends at and whether more
// entries are expected to follow from this source.
func (b *Batch) SetPosition(pos Position, more bool) {
	b.EndPosition = pos
	b.MoreEntries = more
}

// LastWriteTime returns the WriteTime of the last entry in the batch, the
// zero time if the batch is empty. Used for age_of_last_shipped_op_ms.
func (b *Batch) LastWriteTime() (t time.Time, ok bool) {
	if len(b.Entries) == 0 {
		return time.Time{}, false
	}
	last := b.Entries[len(b.Entries)-1].Entry
	return last.WriteTime, true
}
