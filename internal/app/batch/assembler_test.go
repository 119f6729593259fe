package batch

import (
	"testing"

	"github.com/sandeepvinayak/hbase/internal/domain"
)

func TestAssemblerAddAccumulatesIntoBatch(t *testing.T) {
	a := New(Limits{SizeCapacityBytes: 1000, CountCapacity: 10})

	a.Add(&domain.Entry{Table: "t1", EditBytes: make([]byte, 10)}, 10)
	a.Add(&domain.Entry{Table: "t1", EditBytes: make([]byte, 5)}, 5)

	if got, want := a.Batch().NbEntries, 2; got != want {
		t.Fatalf("NbEntries = %d, want %d", got, want)
	}
	if got, want := a.Batch().HeapSize, int64(15); got != want {
		t.Fatalf("HeapSize = %d, want %d", got, want)
	}
}

func TestAssemblerFullBySizeAndCount(t *testing.T) {
	a := New(Limits{SizeCapacityBytes: 20, CountCapacity: 2})

	if a.FullBySize() || a.FullByCount() {
		t.Fatal("expected a fresh assembler to not be full")
	}

	a.Add(&domain.Entry{}, 20)
	if !a.FullBySize() {
		t.Fatal("expected FullBySize true once heap size reaches the cap")
	}

	a.Reset()
	a.Add(&domain.Entry{}, 1)
	a.Add(&domain.Entry{}, 1)
	if !a.FullByCount() {
		t.Fatal("expected FullByCount true once entry count reaches the cap")
	}
}

func TestAssemblerResetStartsFreshBatch(t *testing.T) {
	a := New(Limits{SizeCapacityBytes: 100, CountCapacity: 10})
	a.Add(&domain.Entry{}, 50)

	old := a.Batch()
	a.Reset()

	if a.Batch() == old {
		t.Fatal("expected Reset to replace the batch pointer")
	}
	if !a.Batch().Empty() {
		t.Fatal("expected the batch after Reset to be empty")
	}
}
