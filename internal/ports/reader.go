package ports

import (
	"io"

	"github.com/sandeepvinayak/hbase/internal/domain"
)

// EntryReader is a stateful cursor over one WAL file. Given a LogPath and a
// starting byte offset, it yields a lazy, finite sequence of Entry values
// and reports the byte offset immediately after each yielded entry.
//
// Parsing WAL records into domain objects is an explicit non-goal of the
// core; EntryReader is the seam a caller's own WAL format plugs into.
// Implementations must be closable and idempotently reopenable at the next
// position (see EntryReaderFactory).
type EntryReader interface {
	// Next returns the next decoded entry, or an error. ErrEOF means the
	// file ended cleanly at a record boundary.
	Next() (*domain.Entry, error)

	// Position returns the byte offset immediately past the last entry
	// returned by Next.
	Position() int64

	// Close releases any resources (open file handles, buffers) held by
	// the reader. Safe to call more than once.
	Close() error
}

// EntryReaderFactory opens a new EntryReader for path, starting at offset.
// Called by EntryStream whenever it needs to (re)open a reader: initially,
// after a roll, and after EntryStream.Reset.
type EntryReaderFactory func(path domain.LogPath, offset int64) (EntryReader, error)

// FileLengther reports the current on-disk length of a WAL file, used by
// EntryStream to detect whether the writer has appended more bytes to the
// file it is currently tailing without needing to reopen it.
type FileLengther interface {
	FileLength(path domain.LogPath) (int64, error)
}

// EnsureEOF is a convenience used by adapters to normalize io.EOF from the
// standard library into the package's ErrEOF sentinel. io.EOF is replaced,
// not wrapped; any other error is returned unchanged.
func EnsureEOF(err error) error {
	if err == io.EOF {
		return ErrEOF
	}
	return err
}
