// Package filter implements ports.EntryFilter chains: entries pass through
// a left-to-right sequence of filters, any of which may drop or rewrite
// them. A dropped entry short-circuits the remaining chain.
package filter

import (
	"github.com/sandeepvinayak/hbase/internal/domain"
	"github.com/sandeepvinayak/hbase/internal/ports"
)

// Chain composes filters left-to-right.
type Chain struct {
	filters []ports.EntryFilter
}

// NewChain returns a Chain applying filters in order. An empty chain
// passes every entry through unchanged.
func NewChain(filters ...ports.EntryFilter) *Chain {
	return &Chain{filters: filters}
}

// Filter implements ports.EntryFilter: e is passed to each filter in turn;
// the first to drop it (ok=false) stops the chain.
func (c *Chain) Filter(e *domain.Entry) (*domain.Entry, bool) {
	for _, f := range c.filters {
		var ok bool
		e, ok = f.Filter(e)
		if !ok {
			return nil, false
		}
	}
	return e, true
}

var _ ports.EntryFilter = (*Chain)(nil)
