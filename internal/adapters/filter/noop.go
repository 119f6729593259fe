package filter

import "github.com/sandeepvinayak/hbase/internal/domain"

// NoopFilter passes every entry through unchanged. Used as the default
// empty chain when a caller has no scoping rules to apply.
type NoopFilter struct{}

// Filter implements ports.EntryFilter.
func (NoopFilter) Filter(e *domain.Entry) (*domain.Entry, bool) { return e, true }
