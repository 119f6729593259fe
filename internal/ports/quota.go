package ports

// QuotaController tracks a single process-wide, non-negative count of bytes
// held in in-flight batches across every WAL group in the process. It never
// blocks; it only reports.
type QuotaController interface {
	// Add accounts n more bytes as in-flight and reports whether usage is
	// now at or past the configured quota (the over-quota signal).
	Add(n int64) (overQuota bool)

	// Release subtracts n bytes, called by the shipper once a batch has
	// been shipped and can be forgotten.
	Release(n int64)

	// AcquireCheck reports whether usage is currently within quota,
	// without mutating it. A ReaderLoop that sees false here must sleep
	// and retry without producing a new batch.
	AcquireCheck() bool

	// Used returns the current in-flight byte count, for telemetry and
	// tests.
	Used() int64
}
