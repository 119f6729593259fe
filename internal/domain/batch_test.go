package domain

import "testing"

func TestNewBatchStartsEmptyWithMoreEntriesTrue(t *testing.T) {
	b := NewBatch()
	if !b.Empty() {
		t.Fatal("expected fresh batch to be empty")
	}
	if !b.MoreEntries {
		t.Fatal("expected fresh batch to default MoreEntries true")
	}
}

func TestBatchAddEntryAccumulatesStats(t *testing.T) {
	b := NewBatch()
	e1 := &Entry{RowKey: []byte("row-a"), EditBytes: make([]byte, 10)}
	e2 := &Entry{RowKey: []byte("row-a"), EditBytes: make([]byte, 5)}
	e3 := &Entry{RowKey: []byte("row-b"), EditBytes: make([]byte, 1), BulkLoadRefs: []BulkLoadRef{{SizeBytes: 50}}}

	b.AddEntry(e1, e1.HeapSize())
	b.AddEntry(e2, e2.HeapSize())
	b.AddEntry(e3, e3.HeapSize())

	if b.NbEntries != 3 {
		t.Fatalf("NbEntries = %d, want 3", b.NbEntries)
	}
	// consecutive same row key counts once, so row-a, row-a, row-b => 2
	if b.NbRowKeys != 2 {
		t.Fatalf("NbRowKeys = %d, want 2", b.NbRowKeys)
	}
	if b.NbHFileRefs != 1 {
		t.Fatalf("NbHFileRefs = %d, want 1", b.NbHFileRefs)
	}
	if got, want := b.HeapSize, int64(10+5+1+50); got != want {
		t.Fatalf("HeapSize = %d, want %d", got, want)
	}
	if b.Empty() {
		t.Fatal("expected non-empty batch after AddEntry")
	}
}

func TestBatchRowKeyCountsRepeatAfterInterleave(t *testing.T) {
	b := NewBatch()
	a := &Entry{RowKey: []byte("row-a")}
	other := &Entry{RowKey: []byte("row-b")}

	b.AddEntry(a, 0)
	b.AddEntry(other, 0)
	b.AddEntry(a, 0)

	if b.NbRowKeys != 3 {
		t.Fatalf("NbRowKeys = %d, want 3 (a, b, a all distinct from their immediate predecessor)", b.NbRowKeys)
	}
}

func TestBatchFullBySizeAndCount(t *testing.T) {
	b := NewBatch()
	b.AddEntry(&Entry{EditBytes: make([]byte, 100)}, 100)

	if !b.FullBySize(100) {
		t.Fatal("expected FullBySize(100) true at exactly the cap")
	}
	if b.FullBySize(101) {
		t.Fatal("expected FullBySize(101) false below the cap")
	}
	if !b.FullByCount(1) {
		t.Fatal("expected FullByCount(1) true with one entry")
	}
	if b.FullByCount(2) {
		t.Fatal("expected FullByCount(2) false with one entry")
	}
}

func TestBatchSetPosition(t *testing.T) {
	b := NewBatch()
	pos := Position{Path: "wal-0001", ByteOffset: 128}
	b.SetPosition(pos, false)

	if b.EndPosition != pos {
		t.Fatalf("EndPosition = %+v, want %+v", b.EndPosition, pos)
	}
	if b.MoreEntries {
		t.Fatal("expected MoreEntries false after SetPosition(pos, false)")
	}
}

func TestBatchLastWriteTime(t *testing.T) {
	b := NewBatch()
	if _, ok := b.LastWriteTime(); ok {
		t.Fatal("expected ok=false on empty batch")
	}

	e := &Entry{}
	b.AddEntry(e, 0)
	if _, ok := b.LastWriteTime(); !ok {
		t.Fatal("expected ok=true once an entry has been added")
	}
}
