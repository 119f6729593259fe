// Package domain holds the data model shared by every component of the
// WAL-group tailing reader: log paths, positions, entries, and batches.
package domain

import "fmt"

// LogPath is an immutable identifier of one WAL file on the shared
// filesystem. Two LogPaths are equal iff they name the same file.
type LogPath string

func (p LogPath) String() string { return string(p) }

// Position is the reader's durable resume point: a byte offset into a
// specific WAL file. ByteOffset always corresponds to a record boundary,
// never to the middle of a record.
type Position struct {
	Path       LogPath
	ByteOffset int64
}

// ZeroPosition is the starting position of a freshly created WAL file.
func ZeroPosition(path LogPath) Position {
	return Position{Path: path, ByteOffset: 0}
}

func (p Position) String() string {
	return fmt.Sprintf("%s@%d", p.Path, p.ByteOffset)
}

// SamePath reports whether two positions refer to the same WAL file.
func (p Position) SamePath(other Position) bool {
	return p.Path == other.Path
}
