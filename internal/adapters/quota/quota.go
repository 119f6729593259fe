// Package quota implements ports.QuotaController as a single process-wide
// atomic counter shared by every WAL-group ReaderLoop.
package quota

import (
	"sync/atomic"

	"github.com/sandeepvinayak/hbase/internal/ports"
)

// Controller is the single, process-wide in-flight byte counter described
// in spec.md §4.7. It never blocks; it only reports.
type Controller struct {
	used  atomic.Int64
	quota int64
}

// New returns a Controller with the given soft ceiling in bytes.
func New(quotaBytes int64) *Controller {
	return &Controller{quota: quotaBytes}
}

// Add accounts n more bytes as in-flight and reports whether usage is now
// at or past the configured quota.
func (c *Controller) Add(n int64) bool {
	used := c.used.Add(n)
	return used >= c.quota
}

// Release subtracts n bytes once a batch has been shipped.
func (c *Controller) Release(n int64) {
	c.used.Add(-n)
}

// AcquireCheck reports whether usage is currently within quota.
func (c *Controller) AcquireCheck() bool {
	return c.used.Load() < c.quota
}

// Used returns the current in-flight byte count.
func (c *Controller) Used() int64 {
	return c.used.Load()
}

var _ ports.QuotaController = (*Controller)(nil)
