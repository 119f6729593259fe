// Package observability implements ports.Logger with go.uber.org/zap, the
// structured logger the rest of the pack (matrixorigin-matrixone's pkg/cdc)
// reaches for when a log line needs key/value context instead of a
// formatted string.
package observability

import (
	"go.uber.org/zap"

	"github.com/sandeepvinayak/hbase/internal/ports"
)

// ZapLogger adapts a *zap.Logger to ports.Logger.
type ZapLogger struct {
	z *zap.Logger
}

// NewZapLogger wraps z.
func NewZapLogger(z *zap.Logger) *ZapLogger {
	return &ZapLogger{z: z}
}

// NewProductionZapLogger builds a production zap.Logger (JSON encoding,
// info level) and wraps it.
func NewProductionZapLogger() (*ZapLogger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return NewZapLogger(z), nil
}

func toZapFields(fields []ports.Field) []zap.Field {
	zf := make([]zap.Field, len(fields))
	for i, f := range fields {
		zf[i] = zap.Any(f.Key, f.Value)
	}
	return zf
}

func (l *ZapLogger) Info(msg string, fields ...ports.Field) {
	l.z.Info(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields ...ports.Field) {
	l.z.Warn(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Error(msg string, err error, fields ...ports.Field) {
	zf := toZapFields(fields)
	zf = append(zf, zap.Error(err))
	l.z.Error(msg, zf...)
}

// Sync flushes any buffered log entries. Callers should defer it in main.
func (l *ZapLogger) Sync() error {
	return l.z.Sync()
}

var _ ports.Logger = (*ZapLogger)(nil)
