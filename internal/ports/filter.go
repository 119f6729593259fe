package ports

import "github.com/sandeepvinayak/hbase/internal/domain"

// EntryFilter takes an Entry and returns either a (possibly rewritten)
// Entry, or ok=false to drop it. Filters must be stateless with respect to
// cross-entry ordering; they may hold immutable configuration such as a
// table/column-family scope.
type EntryFilter interface {
	Filter(e *domain.Entry) (out *domain.Entry, ok bool)
}

// EntryFilterFunc adapts a plain function to EntryFilter.
type EntryFilterFunc func(e *domain.Entry) (*domain.Entry, bool)

// Filter implements EntryFilter.
func (f EntryFilterFunc) Filter(e *domain.Entry) (*domain.Entry, bool) { return f(e) }
