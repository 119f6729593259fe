package domain

import "testing"

func TestEntryIsEmpty(t *testing.T) {
	cases := []struct {
		name string
		e    *Entry
		want bool
	}{
		{"nil entry", nil, true},
		{"no bytes no refs", &Entry{}, true},
		{"inline bytes", &Entry{EditBytes: []byte("x")}, false},
		{"bulk load ref only", &Entry{BulkLoadRefs: []BulkLoadRef{{FileName: "f", SizeBytes: 10}}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.e.IsEmpty(); got != c.want {
				t.Fatalf("IsEmpty() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestEntryHeapSizeIncludesBulkLoadBytes(t *testing.T) {
	e := &Entry{
		EditBytes:    make([]byte, 10),
		BulkLoadRefs: []BulkLoadRef{{SizeBytes: 100}, {SizeBytes: 50}},
	}
	if got, want := e.HeapSize(), int64(160); got != want {
		t.Fatalf("HeapSize() = %d, want %d", got, want)
	}
}

func TestEntryQuotaSizeExcludesBulkLoadBytes(t *testing.T) {
	e := &Entry{
		EditBytes:    make([]byte, 10),
		BulkLoadRefs: []BulkLoadRef{{SizeBytes: 100}},
	}
	if got, want := e.QuotaSize(), int64(10); got != want {
		t.Fatalf("QuotaSize() = %d, want %d", got, want)
	}
}

func TestEntryBulkLoadFileCount(t *testing.T) {
	e := &Entry{BulkLoadRefs: []BulkLoadRef{{}, {}}}
	if got, want := e.BulkLoadFileCount(), 2; got != want {
		t.Fatalf("BulkLoadFileCount() = %d, want %d", got, want)
	}
	var nilEntry *Entry
	if got := nilEntry.BulkLoadFileCount(); got != 0 {
		t.Fatalf("nil entry BulkLoadFileCount() = %d, want 0", got)
	}
}
