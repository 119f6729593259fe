package domain

import "time"

// BulkLoadRef is a WAL record's reference to an external data file rather
// than inlining the bytes; replication must ship both the reference and,
// separately, the file it names.
type BulkLoadRef struct {
	FileName  string
	SizeBytes int64
}

// Entry is the core's view of one WAL record. The core treats Entry as a
// black box apart from the fields below: it never interprets RowKey,
// Scope, or the edit bytes themselves, only sizes and compares them.
type Entry struct {
	Table     string
	WriteTime time.Time
	Scope     map[string]string
	RowKey    []byte

	// EditBytes is the inline WAL-edit payload. Empty edits (edits that
	// carry no mutation, e.g. a bulk-load marker with no inline bytes)
	// are still valid entries.
	EditBytes []byte

	BulkLoadRefs []BulkLoadRef
}

// IsEmpty reports whether the entry carries no replicable mutation at all
// (no inline bytes and no bulk-load references). The ReaderLoop skips
// entries for which this is true.
func (e *Entry) IsEmpty() bool {
	return e == nil || (len(e.EditBytes) == 0 && len(e.BulkLoadRefs) == 0)
}

// HeapSize is the number of bytes this entry would occupy if buffered in a
// Batch: inline edit bytes plus the size of every referenced bulk-load
// file. Used for the per-batch size cap (§4.5).
func (e *Entry) HeapSize() int64 {
	if e == nil {
		return 0
	}
	size := int64(len(e.EditBytes))
	for _, ref := range e.BulkLoadRefs {
		size += ref.SizeBytes
	}
	return size
}

// QuotaSize is HeapSize minus the bulk-load file bytes: the process-wide
// quota only accounts for bytes the reader actually buffers in memory,
// and bulk-load files are read directly by the shipper, never by us.
func (e *Entry) QuotaSize() int64 {
	if e == nil {
		return 0
	}
	return int64(len(e.EditBytes))
}

// BulkLoadFileCount returns the number of distinct bulk-load file
// references carried by this entry.
func (e *Entry) BulkLoadFileCount() int {
	if e == nil {
		return 0
	}
	return len(e.BulkLoadRefs)
}
