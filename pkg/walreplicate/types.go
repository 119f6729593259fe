// Package walreplicate is the public facade over the WAL-group tailing
// reader: it re-exports the pieces an embedder needs and offers a
// builder-style Conf/Flow API, mirroring the teacher's own pkg/aegisflow
// facade over its collector→WAL→queue→sink pipeline.
package walreplicate

import (
	"github.com/sandeepvinayak/hbase/internal/app/config"
	"github.com/sandeepvinayak/hbase/internal/domain"
	"github.com/sandeepvinayak/hbase/internal/ports"
)

// Config is the top-level YAML-loadable configuration document.
type Config = config.Config

// GroupConfig names one WAL group and the directory its files live in.
type GroupConfig = config.GroupConfig

// Entry is the core's view of one WAL record.
type Entry = domain.Entry

// BulkLoadRef is a WAL record's reference to an external data file.
type BulkLoadRef = domain.BulkLoadRef

// Batch holds an ordered list of filtered entries plus aggregated stats.
type Batch = domain.Batch

// Position is a durable resume point: a byte offset into a WAL file.
type Position = domain.Position

// LogPath identifies one WAL file on the shared filesystem.
type LogPath = domain.LogPath

// EntryReader is a stateful cursor over one WAL file.
type EntryReader = ports.EntryReader

// EntryReaderFactory opens a new EntryReader for a path at an offset.
type EntryReaderFactory = ports.EntryReaderFactory

// FileLengther reports the current on-disk length of a WAL file.
type FileLengther = ports.FileLengther

// EntryFilter drops or rewrites entries.
type EntryFilter = ports.EntryFilter

// LogQueue is the per-WAL-group FIFO of WAL file paths.
type LogQueue = ports.LogQueue

// QuotaController tracks process-wide in-flight bytes.
type QuotaController = ports.QuotaController

// MetricsSink receives counter/gauge updates from the core.
type MetricsSink = ports.MetricsSink

// Logger is the structured-logging seam every component logs through.
type Logger = ports.Logger

// Field is a structured logging key/value pair.
type Field = ports.Field

// ZeroPosition returns the starting position of a freshly created WAL file.
func ZeroPosition(path LogPath) Position { return domain.ZeroPosition(path) }
