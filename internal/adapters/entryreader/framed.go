// Package entryreader supplies a reference EntryReader implementation over
// a simple length-prefixed, checksummed file format. WAL record parsing is
// an explicit non-goal of the core (spec.md §1); this package exists so the
// module is runnable and testable standalone, mirroring the way the
// teacher's own file-backed WAL (internal/adapters/wal.FileWAL) framed and
// scanned its records.
package entryreader

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"hash/crc32"
	"io"
	"os"
	"time"

	"github.com/sandeepvinayak/hbase/internal/domain"
	"github.com/sandeepvinayak/hbase/internal/ports"
)

// recordHeaderLen is [4-byte length][4-byte crc32 of payload], mirroring
// the teacher's fixed-width record header.
const recordHeaderLen = 8

type wireBulkLoadRef struct {
	FileName  string `json:"file_name"`
	SizeBytes int64  `json:"size_bytes"`
}

type wireEntry struct {
	Table        string            `json:"table"`
	WriteTimeUTC int64             `json:"write_time_unix_nano"`
	Scope        map[string]string `json:"scope,omitempty"`
	RowKey       []byte            `json:"row_key,omitempty"`
	EditBytes    []byte            `json:"edit_bytes,omitempty"`
	BulkLoadRefs []wireBulkLoadRef `json:"bulk_load_refs,omitempty"`
}

// EncodeEntry serializes e into the on-disk record format (header + JSON
// payload) and writes it to w. Used by writers (real or simulated in
// tests) appending to a WAL file that a FramedFileReader will later tail.
func EncodeEntry(w io.Writer, e *domain.Entry) error {
	refs := make([]wireBulkLoadRef, len(e.BulkLoadRefs))
	for i, r := range e.BulkLoadRefs {
		refs[i] = wireBulkLoadRef{FileName: r.FileName, SizeBytes: r.SizeBytes}
	}
	payload, err := json.Marshal(wireEntry{
		Table:        e.Table,
		WriteTimeUTC: e.WriteTime.UnixNano(),
		Scope:        e.Scope,
		RowKey:       e.RowKey,
		EditBytes:    e.EditBytes,
		BulkLoadRefs: refs,
	})
	if err != nil {
		return err
	}

	var hdr [recordHeaderLen]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(payload)))
	binary.BigEndian.PutUint32(hdr[4:8], crc32.ChecksumIEEE(payload))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// FramedFileReader is a stateful cursor over one framed WAL file. It
// distinguishes ports.ErrEOF (clean end at a record boundary) from
// ports.ErrTruncated (a record is partially written, writer may still be
// flushing) from ports.ErrCorrupt (a fully-read record fails its
// checksum).
type FramedFileReader struct {
	f      *os.File
	r      *bufio.Reader
	offset int64
}

// Open opens path for reading and seeks to offset, which must land on a
// record boundary (the caller's responsibility, per the Position
// invariant).
func Open(path domain.LogPath, offset int64) (ports.EntryReader, error) {
	f, err := os.Open(string(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ports.ErrFileNotFound
		}
		return nil, err
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	return &FramedFileReader{f: f, r: bufio.NewReader(f), offset: offset}, nil
}

// Factory returns an ports.EntryReaderFactory backed by Open, the form
// EntryStream consumes.
func Factory() ports.EntryReaderFactory {
	return func(path domain.LogPath, offset int64) (ports.EntryReader, error) {
		return Open(path, offset)
	}
}

// Next decodes and returns the next entry.
func (r *FramedFileReader) Next() (*domain.Entry, error) {
	var hdr [recordHeaderLen]byte
	n, err := io.ReadFull(r.r, hdr[:])
	if err != nil {
		if errors.Is(err, io.EOF) && n == 0 {
			return nil, ports.ErrEOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ports.ErrTruncated
		}
		return nil, err
	}

	length := binary.BigEndian.Uint32(hdr[0:4])
	wantCRC := binary.BigEndian.Uint32(hdr[4:8])

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ports.ErrTruncated
		}
		return nil, err
	}

	if crc32.ChecksumIEEE(payload) != wantCRC {
		return nil, ports.ErrCorrupt
	}

	var wire wireEntry
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, ports.ErrCorrupt
	}

	r.offset += int64(recordHeaderLen) + int64(length)

	refs := make([]domain.BulkLoadRef, len(wire.BulkLoadRefs))
	for i, ref := range wire.BulkLoadRefs {
		refs[i] = domain.BulkLoadRef{FileName: ref.FileName, SizeBytes: ref.SizeBytes}
	}
	return &domain.Entry{
		Table:        wire.Table,
		WriteTime:    time.Unix(0, wire.WriteTimeUTC).UTC(),
		Scope:        wire.Scope,
		RowKey:       wire.RowKey,
		EditBytes:    wire.EditBytes,
		BulkLoadRefs: refs,
	}, nil
}

// Position returns the byte offset immediately past the last entry
// returned by Next.
func (r *FramedFileReader) Position() int64 { return r.offset }

// Close releases the underlying file handle. Safe to call more than once.
func (r *FramedFileReader) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

var _ ports.EntryReader = (*FramedFileReader)(nil)

// StatLengther implements ports.FileLengther via os.Stat, used by
// EntryStream to detect whether the current head file has grown without
// reopening it.
type StatLengther struct{}

// FileLength returns the current on-disk length of path.
func (StatLengther) FileLength(path domain.LogPath) (int64, error) {
	info, err := os.Stat(string(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ports.ErrFileNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}

var _ ports.FileLengther = StatLengther{}
