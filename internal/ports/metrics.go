package ports

// MetricsSink is updated from every component of the core. Implementations
// must be safe for concurrent use by many WAL-group ReaderLoops.
type MetricsSink interface {
	// SetSizeOfLogQueue records the current queue length for group.
	SetSizeOfLogQueue(group string, n int)

	// SetOldestWALAgeMs records now - mtime(head) for group, in
	// milliseconds.
	SetOldestWALAgeMs(group string, ms float64)

	// SetAgeOfLastShippedOpMs records now - WriteTime of the last entry
	// in the last shipped batch for group, in milliseconds.
	SetAgeOfLastShippedOpMs(group string, ms float64)

	// IncLogEditsRead increments the count of entries yielded by
	// EntryStream for group.
	IncLogEditsRead(group string, n int)

	// IncLogEditsFiltered increments the count of entries dropped by the
	// filter chain for group.
	IncLogEditsFiltered(group string, n int)

	// IncLogReadBytes increments bytes consumed from WAL files for
	// group.
	IncLogReadBytes(group string, n int64)

	// IncUnknownFileLength increments the count of length-lookup
	// failures for group.
	IncUnknownFileLength(group string)

	// IncUncleanlyClosedWALs increments the count of EOF-autorecovery
	// triggers for group.
	IncUncleanlyClosedWALs(group string)

	// AddBytesSkippedInUncleanlyClosedWALs accumulates bytes skipped by
	// such triggers for group.
	AddBytesSkippedInUncleanlyClosedWALs(group string, n int64)

	// IncRestartedWALReading increments the count of stream re-opens for
	// group.
	IncRestartedWALReading(group string)

	// IncCompletedWAL increments the count of files fully consumed for
	// group.
	IncCompletedWAL(group string)

	// IncCompletedRecoveryQueue increments the count of recovered queues
	// fully drained for group.
	IncCompletedRecoveryQueue(group string)
}
