package ports

import "github.com/sandeepvinayak/hbase/internal/domain"

// LogQueue is the per-WAL-group FIFO of WAL file paths. The head is always
// the file currently being (or last being) read; the tail is the newest
// appended file. Writers append to the tail on WAL-roll; the ReaderLoop
// removes the head only after advancing past end-of-file into a successor.
// Never reordered; size is >= 1 while the group is live.
//
// Safe for many producers (writer roll callbacks) and one consumer (the
// owning ReaderLoop).
type LogQueue interface {
	// Enqueue appends path to the tail.
	Enqueue(path domain.LogPath)

	// Peek returns the head without removing it, and false if the queue
	// is empty.
	Peek() (domain.LogPath, bool)

	// RemoveHead drops the head. Only called by the owning ReaderLoop.
	RemoveHead()

	// Size returns the current queue length.
	Size() int
}
