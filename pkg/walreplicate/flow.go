package walreplicate

import (
	"context"
	"fmt"

	"github.com/sandeepvinayak/hbase/internal/app/config"
)

// Flow is a convenience builder that lets callers say Conf -> StreamIN ->
// StreamOUT without touching the underlying hexagonal wiring, mirroring
// the teacher's own aegisflow.Flow.
type Flow struct {
	cfg  *Config
	opts []RuntimeOption
}

// FlowOption mutates the Flow after configuration is loaded.
type FlowOption func(*Flow)

// StreamInOption configures the reader side of the pipeline (queues,
// readers, file-length lookups, start positions).
type StreamInOption func(*Flow)

// StreamOutOption configures the observability side of the pipeline
// (metrics sink, logger).
type StreamOutOption func(*Flow)

// Conf loads YAML from disk, applies FlowOption values, and returns a Flow
// builder.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig bootstraps a Flow from an in-memory Config.
func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Config returns the underlying configuration so callers can inspect it
// before building a runtime.
func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

// StreamIN records reader-side overrides.
func (f *Flow) StreamIN(opts ...StreamInOption) *Flow {
	if f == nil {
		return nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// StreamOUT records observability-side overrides and builds a Runtime
// ready to Start or Run.
func (f *Flow) StreamOUT(opts ...StreamOutOption) (*Runtime, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return NewRuntime(f.cfg, f.opts...)
}

// Run is a shortcut for StreamOUT + runtime.Run.
func (f *Flow) Run(ctx context.Context, opts ...StreamOutOption) error {
	rt, err := f.StreamOUT(opts...)
	if err != nil {
		return err
	}
	return rt.Run(ctx)
}

func (f *Flow) appendOptions(opts ...RuntimeOption) {
	for _, opt := range opts {
		if opt != nil {
			f.opts = append(f.opts, opt)
		}
	}
}

// WithFlowOptions appends raw RuntimeOption values during Conf.
func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(opts...)
		}
	}
}

// StreamInReaderFactory installs a custom EntryReader factory for group.
func StreamInReaderFactory(group string, factory EntryReaderFactory) StreamInOption {
	return func(f *Flow) {
		if f != nil && factory != nil {
			f.appendOptions(WithEntryReaderFactory(group, factory))
		}
	}
}

// StreamInFilter installs a custom filter chain for group.
func StreamInFilter(group string, filter EntryFilter) StreamInOption {
	return func(f *Flow) {
		if f != nil && filter != nil {
			f.appendOptions(WithGroupFilter(group, filter))
		}
	}
}

// StreamInStartPosition sets the resume position for group.
func StreamInStartPosition(group string, pos Position) StreamInOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(WithStartPosition(group, pos))
		}
	}
}

// StreamOutMetrics overrides the default Prometheus-based MetricsSink.
func StreamOutMetrics(m MetricsSink) StreamOutOption {
	return func(f *Flow) {
		if f != nil && m != nil {
			f.appendOptions(WithMetricsSink(m))
		}
	}
}

// StreamOutLogger overrides the default zap-based Logger.
func StreamOutLogger(l Logger) StreamOutOption {
	return func(f *Flow) {
		if f != nil && l != nil {
			f.appendOptions(WithLogger(l))
		}
	}
}
