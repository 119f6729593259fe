// Package ports declares the capability interfaces the app layer depends
// on: LogQueue, EntryReader, EntryFilter, QuotaController, MetricsSink, and
// the Control handle a ReaderLoop observes to suspend or stop.
package ports

import "errors"

// Sentinel errors an EntryReader (or the stream built on top of it) may
// return. Checked with errors.Is; wrapping is expected and encouraged so
// the underlying os error survives alongside the sentinel.
var (
	// ErrTruncated means the configured read limit was reached but the
	// record header suggests more bytes exist. The writer may still be
	// flushing; retryable.
	ErrTruncated = errors.New("entryreader: truncated record, writer may still be flushing")

	// ErrEOF means end-of-file was cleanly reached at a record boundary.
	ErrEOF = errors.New("entryreader: end of file")

	// ErrCorrupt means a record-level checksum or framing error was
	// found. Non-retryable for this file; requires operator action.
	ErrCorrupt = errors.New("entryreader: corrupt record")

	// ErrFileNotFound means the filesystem reported the path missing.
	// Treated as transient: the file may not have been created yet.
	ErrFileNotFound = errors.New("entryreader: file not found")

	// ErrQuotaExceeded is reported internally when QuotaController.Add
	// pushes usage at or past the configured ceiling.
	ErrQuotaExceeded = errors.New("readerloop: quota exceeded")

	// ErrInterrupted means the ReaderLoop was asked to stop mid-cycle.
	ErrInterrupted = errors.New("readerloop: interrupted")

	// ErrReadyQueueClosed means the downstream ready-queue is no longer
	// accepting batches; treated as a shutdown signal.
	ErrReadyQueueClosed = errors.New("readerloop: ready queue closed")
)
