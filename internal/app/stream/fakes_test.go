package stream

import (
	"github.com/sandeepvinayak/hbase/internal/domain"
	"github.com/sandeepvinayak/hbase/internal/ports"
)

// fakeReader yields entries from a slice the test can grow after the
// reader is created, to simulate a writer appending to a live file.
type fakeReader struct {
	entries *[]*domain.Entry
	idx     int
	closed  bool
}

func (r *fakeReader) Next() (*domain.Entry, error) {
	if r.idx >= len(*r.entries) {
		return nil, ports.ErrEOF
	}
	e := (*r.entries)[r.idx]
	r.idx++
	return e, nil
}

func (r *fakeReader) Position() int64 { return int64(r.idx) }

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

// fakeQueue is a minimal ports.LogQueue backed by a slice.
type fakeQueue struct {
	paths []domain.LogPath
}

func newFakeQueue(paths ...domain.LogPath) *fakeQueue {
	return &fakeQueue{paths: paths}
}

func (q *fakeQueue) Enqueue(p domain.LogPath) { q.paths = append(q.paths, p) }

func (q *fakeQueue) Peek() (domain.LogPath, bool) {
	if len(q.paths) == 0 {
		return "", false
	}
	return q.paths[0], true
}

func (q *fakeQueue) RemoveHead() {
	if len(q.paths) > 0 {
		q.paths = q.paths[1:]
	}
}

func (q *fakeQueue) Size() int { return len(q.paths) }

// fakeLengther reports a fixed length per path, or a fixed error.
type fakeLengther struct {
	lengths map[domain.LogPath]int64
	err     error
}

func (l *fakeLengther) FileLength(path domain.LogPath) (int64, error) {
	if l.err != nil {
		return 0, l.err
	}
	return l.lengths[path], nil
}

// fakeFactory dispenses pre-built readers by path.
type fakeFactory struct {
	readers map[domain.LogPath]*fakeReader
	opens   []domain.LogPath
}

func (f *fakeFactory) factory() ports.EntryReaderFactory {
	return func(path domain.LogPath, offset int64) (ports.EntryReader, error) {
		f.opens = append(f.opens, path)
		r, ok := f.readers[path]
		if !ok {
			return nil, ports.ErrFileNotFound
		}
		return r, nil
	}
}

var _ ports.LogQueue = (*fakeQueue)(nil)
var _ ports.FileLengther = (*fakeLengther)(nil)
var _ ports.EntryReader = (*fakeReader)(nil)
