package readerloop

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepvinayak/hbase/internal/adapters/entryreader"
	"github.com/sandeepvinayak/hbase/internal/adapters/filter"
	"github.com/sandeepvinayak/hbase/internal/adapters/logqueue"
	"github.com/sandeepvinayak/hbase/internal/adapters/metrics"
	"github.com/sandeepvinayak/hbase/internal/adapters/observability"
	"github.com/sandeepvinayak/hbase/internal/adapters/quota"
	"github.com/sandeepvinayak/hbase/internal/app/batch"
	"github.com/sandeepvinayak/hbase/internal/app/readyqueue"
	"github.com/sandeepvinayak/hbase/internal/domain"
	"github.com/sandeepvinayak/hbase/internal/ports"
)

func writeWALFile(t *testing.T, path string, entries ...*domain.Entry) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	for _, e := range entries {
		if err := entryreader.EncodeEntry(f, e); err != nil {
			t.Fatalf("EncodeEntry: %v", err)
		}
	}
}

func baseConfig(t *testing.T, queue *logqueue.Queue, ready *readyqueue.Queue) Config {
	t.Helper()
	return Config{
		Group:         "peer-1",
		Queue:         queue,
		ReaderFactory: entryreader.Factory(),
		Lengther:      entryreader.StatLengther{},
		Filter:        filter.NoopFilter{},
		Quota:         quota.New(1 << 20),
		Metrics:       metrics.NullSink{},
		Logger:        observability.NullLogger{},
		Ready:         ready,
		Limits:        batch.Limits{SizeCapacityBytes: 1 << 20, CountCapacity: 1000},
		RetrySleep:    time.Millisecond,
	}
}

func TestReaderLoopRecoveredQueueTerminatesWithMoreEntriesFalse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal-0001")
	writeWALFile(t, path,
		&domain.Entry{Table: "orders", EditBytes: []byte("e1")},
		&domain.Entry{Table: "orders", EditBytes: []byte("e2")},
		&domain.Entry{Table: "orders", EditBytes: []byte("e3")},
	)

	queue := logqueue.New("peer-1", metrics.NullSink{})
	queue.Enqueue(domain.LogPath(path))
	ready := readyqueue.New(4)

	cfg := baseConfig(t, queue, ready)
	cfg.Recovered = true

	loop := New(cfg)
	if err := loop.Run(domain.ZeroPosition(domain.LogPath(path))); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	b, ok := ready.TryTake()
	if !ok {
		t.Fatal("expected a shipped batch")
	}
	if b.NbEntries != 3 {
		t.Fatalf("NbEntries = %d, want 3", b.NbEntries)
	}
	if b.MoreEntries {
		t.Fatal("expected MoreEntries=false on the terminal batch")
	}
}

func TestReaderLoopEOFAutorecoveryRemovesZeroLengthHead(t *testing.T) {
	dir := t.TempDir()
	zeroPath := filepath.Join(dir, "wal-0000")
	if err := os.WriteFile(zeroPath, nil, 0o644); err != nil {
		t.Fatalf("write zero-length file: %v", err)
	}
	l1Path := filepath.Join(dir, "wal-0001")
	writeWALFile(t, l1Path,
		&domain.Entry{Table: "orders", EditBytes: []byte("e1")},
		&domain.Entry{Table: "orders", EditBytes: []byte("e2")},
		&domain.Entry{Table: "orders", EditBytes: []byte("e3")},
	)

	queue := logqueue.New("peer-1", metrics.NullSink{})
	queue.Enqueue(domain.LogPath(zeroPath))
	queue.Enqueue(domain.LogPath(l1Path))
	ready := readyqueue.New(4)

	cfg := baseConfig(t, queue, ready)
	cfg.Recovered = true
	cfg.EOFAutorecovery = true

	loop := New(cfg)
	if err := loop.Run(domain.ZeroPosition(domain.LogPath(zeroPath))); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	b, ok := ready.TryTake()
	if !ok {
		t.Fatal("expected a shipped batch")
	}
	if b.NbEntries != 3 {
		t.Fatalf("NbEntries = %d, want 3 (from wal-0001, after wal-0000 was recovered away)", b.NbEntries)
	}
	if b.MoreEntries {
		t.Fatal("expected MoreEntries=false once the recovered queue is fully drained")
	}
}

func TestReaderLoopFiltersDroppedTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal-0001")
	writeWALFile(t, path,
		&domain.Entry{Table: "orders", EditBytes: []byte("keep")},
		&domain.Entry{Table: "audit_log", EditBytes: []byte("drop")},
		&domain.Entry{Table: "orders", EditBytes: []byte("keep2")},
	)

	queue := logqueue.New("peer-1", metrics.NullSink{})
	queue.Enqueue(domain.LogPath(path))
	ready := readyqueue.New(4)

	cfg := baseConfig(t, queue, ready)
	cfg.Filter = filter.NewScopeFilter("orders")
	cfg.Recovered = true

	loop := New(cfg)
	if err := loop.Run(domain.ZeroPosition(domain.LogPath(path))); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	b, ok := ready.TryTake()
	if !ok {
		t.Fatal("expected a shipped batch")
	}
	if b.NbEntries != 2 {
		t.Fatalf("NbEntries = %d, want 2 (audit_log dropped)", b.NbEntries)
	}
}

func TestReaderLoopDropsEmptyEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal-0001")
	writeWALFile(t, path,
		&domain.Entry{Table: "orders", EditBytes: []byte("keep")},
		&domain.Entry{Table: "orders"}, // no inline bytes, no bulk load refs: empty
	)

	queue := logqueue.New("peer-1", metrics.NullSink{})
	queue.Enqueue(domain.LogPath(path))
	ready := readyqueue.New(4)

	cfg := baseConfig(t, queue, ready)
	cfg.Recovered = true

	loop := New(cfg)
	if err := loop.Run(domain.ZeroPosition(domain.LogPath(path))); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	b, ok := ready.TryTake()
	if !ok {
		t.Fatal("expected a shipped batch")
	}
	if b.NbEntries != 1 {
		t.Fatalf("NbEntries = %d, want 1 (the empty entry is skipped)", b.NbEntries)
	}
}

func TestReaderLoopCancelDuringBlockedShipReleasesQuota(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal-0001")
	writeWALFile(t, path, &domain.Entry{Table: "orders", EditBytes: []byte("e1")})

	queue := logqueue.New("peer-1", metrics.NullSink{})
	queue.Enqueue(domain.LogPath(path))

	// fill the only ready-queue slot so the loop's own ship() call blocks.
	ready := readyqueue.New(1)
	if err := ready.Put(domain.NewBatch(), nil); err != nil {
		t.Fatalf("prime ready queue: %v", err)
	}

	q := quota.New(1 << 20)
	cancel := make(chan struct{})
	cfg := baseConfig(t, queue, ready)
	cfg.Quota = q
	cfg.Control = &ports.Control{PeerEnabled: ports.AlwaysEnabled, Cancel: cancel}

	loop := New(cfg)

	done := make(chan error, 1)
	go func() { done <- loop.Run(domain.ZeroPosition(domain.LogPath(path))) }()

	time.Sleep(20 * time.Millisecond)
	close(cancel)

	select {
	case err := <-done:
		if !errors.Is(err, ports.ErrInterrupted) {
			t.Fatalf("Run() = %v, want ErrInterrupted", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	if got := q.Used(); got != 0 {
		t.Fatalf("Used() after cancel = %d, want 0 (quota released when the blocked Put is interrupted)", got)
	}
}

func TestReaderLoopFatalOnCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal-0001")
	writeWALFile(t, path, &domain.Entry{Table: "orders", EditBytes: []byte("e1")})

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	raw[len(raw)-1] ^= 0xFF
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	queue := logqueue.New("peer-1", metrics.NullSink{})
	queue.Enqueue(domain.LogPath(path))
	ready := readyqueue.New(4)

	cfg := baseConfig(t, queue, ready)
	cfg.Recovered = true

	loop := New(cfg)
	err = loop.Run(domain.ZeroPosition(domain.LogPath(path)))
	if !errors.Is(err, ports.ErrCorrupt) {
		t.Fatalf("Run() = %v, want ErrCorrupt", err)
	}
}
