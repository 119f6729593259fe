// Package stream implements EntryStream: a single lazy iterator over the
// concatenation of files in a LogQueue, reopening readers across rolls and
// reporting a monotonic position within each file.
package stream

import (
	"errors"

	"github.com/sandeepvinayak/hbase/internal/domain"
	"github.com/sandeepvinayak/hbase/internal/ports"
)

// Status is the tagged result of a HasNext/Next probe, the "match" spec.md
// §9 asks for in place of exception-driven control flow.
type Status int

const (
	// StatusHasEntry means Next will return a decoded entry.
	StatusHasEntry Status = iota
	// StatusSameFileEOF means the current head has no more bytes to
	// read right now, but it is still the head (the writer may append
	// more later).
	StatusSameFileEOF
	// StatusRolled means the head file changed; the stream reopened on
	// the new head.
	StatusRolled
	// StatusTruncated means a record was partially written; retryable.
	StatusTruncated
	// StatusCorrupt means a record failed its checksum; fatal for this
	// file.
	StatusCorrupt
)

// EntryStream is the iterator described in spec.md §4.3. It owns exactly
// one open EntryReader at a time. On a roll it calls RemoveHead only after
// the reopen onto the new head file has succeeded; the only other caller of
// RemoveHead is the ReaderLoop's EOF-autorecovery (see ReopenAt).
type EntryStream struct {
	queue    ports.LogQueue
	factory  ports.EntryReaderFactory
	lengther ports.FileLengther

	current     ports.EntryReader
	currentPath domain.LogPath
	offset      int64

	pending buffered

	rollCount int
}

// RollCount returns the number of times this stream has reopened onto a
// new head file since it was created. The ReaderLoop uses this to decide
// whether an otherwise-empty batch must still be shipped to carry the new
// position (spec.md §4.5, "empty batch after roll").
func (s *EntryStream) RollCount() int { return s.rollCount }

// ReopenAt closes the current reader and opens path at offset, without
// touching the LogQueue. Used by the ReaderLoop after EOF-autorecovery has
// already removed the stale head itself.
func (s *EntryStream) ReopenAt(path domain.LogPath, offset int64) error {
	return s.openAt(path, offset)
}

// New opens a stream positioned at start. The path named by start need not
// yet equal the queue's head (the head may have since rolled); the first
// HasNext call reconciles the two.
func New(queue ports.LogQueue, factory ports.EntryReaderFactory, lengther ports.FileLengther, start domain.Position) (*EntryStream, error) {
	s := &EntryStream{queue: queue, factory: factory, lengther: lengther}
	if err := s.openAt(start.Path, start.ByteOffset); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *EntryStream) openAt(path domain.LogPath, offset int64) error {
	r, err := s.factory(path, offset)
	if err != nil {
		return err
	}
	if s.current != nil {
		s.current.Close()
	}
	s.current = r
	s.currentPath = path
	s.offset = offset
	return nil
}

// CurrentPath returns the path of the file currently open.
func (s *EntryStream) CurrentPath() domain.LogPath { return s.currentPath }

// Position returns the byte offset immediately past the last entry
// returned by Next, within CurrentPath.
func (s *EntryStream) Position() int64 { return s.offset }

// probe attempts to decode the next entry from the current reader,
// classifying the result into the tagged Status variant from spec.md §9 in
// place of exception-driven control flow.
func (s *EntryStream) probe() (Status, *domain.Entry, error) {
	entry, err := s.current.Next()
	if err == nil {
		s.offset = s.current.Position()
		return StatusHasEntry, entry, nil
	}

	switch {
	case errors.Is(err, ports.ErrCorrupt):
		return StatusCorrupt, nil, err
	case errors.Is(err, ports.ErrTruncated):
		return StatusTruncated, nil, err
	case errors.Is(err, ports.ErrEOF):
		return s.handleEOF()
	default:
		return StatusTruncated, nil, err
	}
}

// handleEOF implements the TRY_ADVANCE branch of the state diagram: if the
// queue's head has moved past the file we're reading, remove it and reopen
// on the new head at offset 0 (ROLL_DETECTED); otherwise stay put
// (SAME_FILE).
func (s *EntryStream) handleEOF() (Status, *domain.Entry, error) {
	head, ok := s.queue.Peek()
	if !ok || head == s.currentPath {
		return StatusSameFileEOF, nil, nil
	}

	if err := s.openAt(head, 0); err != nil {
		return StatusTruncated, nil, err
	}
	s.queue.RemoveHead()
	s.rollCount++
	return StatusRolled, nil, nil
}

// buffered holds an entry fetched by HasNext so Next need not re-read.
type buffered struct {
	entry *domain.Entry
	valid bool
}

// HasNext reports whether Next will return a decoded entry. Per §4.3 it is
// true iff an entry is available in the current reader OR the head's
// on-disk length exceeds our position OR the head differs from the path
// we have open (a roll with a successor to move to).
func (s *EntryStream) HasNext() (bool, error) {
	status, entry, err := s.probe()
	switch status {
	case StatusHasEntry:
		s.pending = buffered{entry: entry, valid: true}
		return true, nil
	case StatusRolled:
		return s.HasNext()
	case StatusCorrupt:
		return false, err
	case StatusTruncated:
		return false, err
	case StatusSameFileEOF:
		grew, lerr := s.headGrew()
		if lerr != nil {
			return false, lerr
		}
		return grew, nil
	}
	return false, nil
}

func (s *EntryStream) headGrew() (bool, error) {
	length, err := s.lengther.FileLength(s.currentPath)
	if err != nil {
		if errors.Is(err, ports.ErrFileNotFound) {
			return false, err
		}
		return false, err
	}
	return length > s.offset, nil
}

// Next returns the entry HasNext already decoded. Callers must call
// HasNext and receive true immediately before calling Next.
func (s *EntryStream) Next() (*domain.Entry, error) {
	if !s.pending.valid {
		status, entry, err := s.probe()
		if status != StatusHasEntry {
			if err != nil {
				return nil, err
			}
			return nil, ports.ErrEOF
		}
		return entry, nil
	}
	e := s.pending.entry
	s.pending = buffered{}
	return e, nil
}

// Reset closes and reopens the reader at the last-known position on the
// last-known path, releasing any buffers the reader holds. Called by the
// ReaderLoop after a batch is pushed.
func (s *EntryStream) Reset() error {
	return s.openAt(s.currentPath, s.offset)
}

// Close releases the current reader.
func (s *EntryStream) Close() error {
	if s.current == nil {
		return nil
	}
	return s.current.Close()
}
