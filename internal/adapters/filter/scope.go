package filter

import "github.com/sandeepvinayak/hbase/internal/domain"

// ScopeFilter keeps only entries whose Table appears in the configured
// allow-set, dropping everything else. It matches on Table only; the
// column-family attributes in Entry.Scope are not consulted.
type ScopeFilter struct {
	allow map[string]struct{}
}

// NewScopeFilter returns a filter that keeps entries for exactly the given
// table names.
func NewScopeFilter(tables ...string) *ScopeFilter {
	allow := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		allow[t] = struct{}{}
	}
	return &ScopeFilter{allow: allow}
}

// Filter implements ports.EntryFilter.
func (f *ScopeFilter) Filter(e *domain.Entry) (*domain.Entry, bool) {
	if _, ok := f.allow[e.Table]; !ok {
		return nil, false
	}
	return e, true
}
