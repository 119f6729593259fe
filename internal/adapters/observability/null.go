package observability

import "github.com/sandeepvinayak/hbase/internal/ports"

// NullLogger discards everything. Used by tests that don't care about log
// output and want to avoid the zap dependency in their fixtures.
type NullLogger struct{}

func (NullLogger) Info(msg string, fields ...ports.Field)            {}
func (NullLogger) Warn(msg string, fields ...ports.Field)            {}
func (NullLogger) Error(msg string, err error, fields ...ports.Field) {}

var _ ports.Logger = NullLogger{}
