package metrics

import "github.com/sandeepvinayak/hbase/internal/ports"

// NullSink discards every metric. Useful in tests and for embedders that
// run their own observability stack.
type NullSink struct{}

func (NullSink) SetSizeOfLogQueue(group string, n int)                           {}
func (NullSink) SetOldestWALAgeMs(group string, ms float64)                      {}
func (NullSink) SetAgeOfLastShippedOpMs(group string, ms float64)                {}
func (NullSink) IncLogEditsRead(group string, n int)                             {}
func (NullSink) IncLogEditsFiltered(group string, n int)                         {}
func (NullSink) IncLogReadBytes(group string, n int64)                           {}
func (NullSink) IncUnknownFileLength(group string)                               {}
func (NullSink) IncUncleanlyClosedWALs(group string)                             {}
func (NullSink) AddBytesSkippedInUncleanlyClosedWALs(group string, n int64)      {}
func (NullSink) IncRestartedWALReading(group string)                            {}
func (NullSink) IncCompletedWAL(group string)                                   {}
func (NullSink) IncCompletedRecoveryQueue(group string)                         {}

var _ ports.MetricsSink = NullSink{}
