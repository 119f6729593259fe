package walreplicate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sandeepvinayak/hbase/internal/adapters/entryreader"
	"github.com/sandeepvinayak/hbase/internal/adapters/filter"
	"github.com/sandeepvinayak/hbase/internal/adapters/logqueue"
	"github.com/sandeepvinayak/hbase/internal/adapters/metrics"
	"github.com/sandeepvinayak/hbase/internal/adapters/observability"
	"github.com/sandeepvinayak/hbase/internal/adapters/quota"
	"github.com/sandeepvinayak/hbase/internal/app/batch"
	"github.com/sandeepvinayak/hbase/internal/app/readerloop"
	"github.com/sandeepvinayak/hbase/internal/app/readyqueue"
	"github.com/sandeepvinayak/hbase/internal/ports"
)

// RuntimeOption customizes the dependencies a Runtime wires up for one or
// all WAL groups, the same override pattern as the teacher's
// EdgeRuntimeOption.
type RuntimeOption func(*runtimeOverrides)

type groupOverride struct {
	factory       EntryReaderFactory
	lengther      FileLengther
	filter        EntryFilter
	startPosition *Position
}

type runtimeOverrides struct {
	quota    QuotaController
	metrics  MetricsSink
	logger   Logger
	perGroup map[string]*groupOverride
}

func (o *runtimeOverrides) group(name string) *groupOverride {
	if o.perGroup == nil {
		o.perGroup = make(map[string]*groupOverride)
	}
	g, ok := o.perGroup[name]
	if !ok {
		g = &groupOverride{}
		o.perGroup[name] = g
	}
	return g
}

// WithQuotaController overrides the default process-wide QuotaController.
func WithQuotaController(q QuotaController) RuntimeOption {
	return func(o *runtimeOverrides) { o.quota = q }
}

// WithMetricsSink overrides the default Prometheus-backed MetricsSink.
func WithMetricsSink(m MetricsSink) RuntimeOption {
	return func(o *runtimeOverrides) { o.metrics = m }
}

// WithLogger overrides the default zap-backed Logger.
func WithLogger(l Logger) RuntimeOption {
	return func(o *runtimeOverrides) { o.logger = l }
}

// WithEntryReaderFactory installs a custom EntryReader factory for the
// named group, replacing the reference FramedFileReader.
func WithEntryReaderFactory(group string, f EntryReaderFactory) RuntimeOption {
	return func(o *runtimeOverrides) { o.group(group).factory = f }
}

// WithFileLengther installs a custom FileLengther for the named group.
func WithFileLengther(group string, l FileLengther) RuntimeOption {
	return func(o *runtimeOverrides) { o.group(group).lengther = l }
}

// WithGroupFilter installs a custom filter chain for the named group,
// overriding any `tables` scope configured in YAML.
func WithGroupFilter(group string, f EntryFilter) RuntimeOption {
	return func(o *runtimeOverrides) { o.group(group).filter = f }
}

// WithStartPosition sets the resume position for the named group,
// overriding the default of (first file in its queue, offset 0). Callers
// restoring from a coordination layer's durable cursor use this.
func WithStartPosition(group string, pos Position) RuntimeOption {
	return func(o *runtimeOverrides) { o.group(group).startPosition = &pos }
}

type groupRuntime struct {
	name     string
	queue    *logqueue.Queue
	ready    *readyqueue.Queue
	loop     *readerloop.Loop
	start    Position
	lengther FileLengther
	cancel   chan struct{}
}

// Runtime wires one ReaderLoop per configured WAL group around a shared
// QuotaController, MetricsSink, and Logger, and exposes the Prometheus
// metrics endpoint, mirroring the teacher's EdgeRuntime lifecycle.
type Runtime struct {
	cfg     *Config
	quota   QuotaController
	metrics MetricsSink
	logger  Logger
	groups  map[string]*groupRuntime

	metricsSrv *http.Server
	loopErrs   chan error
}

// NewRuntime bootstraps the default adapters (reference FramedFileReader,
// os.Stat-backed FileLengther, table-scope or no-op filter, atomic
// QuotaController, Prometheus MetricsSink, zap Logger) for every group in
// cfg. Callers use RuntimeOption values to override any dependency.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var ov runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&ov)
		}
	}

	q := ov.quota
	if q == nil {
		q = quota.New(cfg.Quota.Bytes)
	}

	m := ov.metrics
	if m == nil {
		m = metrics.NewPromSink(prometheus.DefaultRegisterer)
	}

	log := ov.logger
	if log == nil {
		zl, err := observability.NewProductionZapLogger()
		if err != nil {
			return nil, fmt.Errorf("build default logger: %w", err)
		}
		log = zl
	}

	rt := &Runtime{
		cfg:     cfg,
		quota:   q,
		metrics: m,
		logger:  log,
		groups:  make(map[string]*groupRuntime, len(cfg.Groups)),
	}

	for _, g := range cfg.Groups {
		gov := ov.group(g.Name)

		lq := logqueue.New(g.Name, m)

		factory := gov.factory
		if factory == nil {
			factory = entryreader.Factory()
		}
		lengther := gov.lengther
		if lengther == nil {
			lengther = entryreader.StatLengther{}
		}
		entryFilter := gov.filter
		if entryFilter == nil {
			if len(g.Tables) > 0 {
				entryFilter = filter.NewScopeFilter(g.Tables...)
			} else {
				entryFilter = filter.NoopFilter{}
			}
		}

		start := ZeroPosition("")
		if gov.startPosition != nil {
			start = *gov.startPosition
		}

		cancel := make(chan struct{})
		ready := readyqueue.New(cfg.Batch.QueueCapacity)
		loop := readerloop.New(readerloop.Config{
			Group:         g.Name,
			Queue:         lq,
			ReaderFactory: factory,
			Lengther:      lengther,
			Filter:        entryFilter,
			Quota:         q,
			Metrics:       m,
			Logger:        log,
			Control: &ports.Control{
				PeerEnabled: ports.AlwaysEnabled,
				Cancel:      cancel,
			},
			Ready: ready,
			Limits: batch.Limits{
				SizeCapacityBytes: cfg.Batch.SizeCapacityBytes,
				CountCapacity:     cfg.Batch.CountCapacity,
			},
			RetrySleep:      cfg.Retry.RetrySleep(),
			MaxMultiplier:   cfg.Retry.MaxMultiplier,
			EOFAutorecovery: cfg.EOF.Autorecovery,
			Recovered:       g.Recovered,
		})

		rt.groups[g.Name] = &groupRuntime{
			name:     g.Name,
			queue:    lq,
			ready:    ready,
			loop:     loop,
			start:    start,
			lengther: lengther,
			cancel:   cancel,
		}
	}

	return rt, nil
}

// NotifyRoll enqueues path as the newest WAL file for group, called by the
// caller's own roll-callback (an external collaborator; see Non-goals).
func (rt *Runtime) NotifyRoll(group string, path LogPath) error {
	g, ok := rt.groups[group]
	if !ok {
		return fmt.Errorf("walreplicate: unknown group %q", group)
	}
	g.queue.Enqueue(path)
	return nil
}

// Ready returns the bounded ready-queue a shipper should Take batches from
// for the named group.
func (rt *Runtime) Ready(group string) (*readyqueue.Queue, error) {
	g, ok := rt.groups[group]
	if !ok {
		return nil, fmt.Errorf("walreplicate: unknown group %q", group)
	}
	return g.ready, nil
}

// Quota returns the shared QuotaController, so a shipper can Release
// bytes once a batch has actually been transmitted.
func (rt *Runtime) Quota() QuotaController { return rt.quota }

// Start launches one ReaderLoop goroutine per WAL group and the Prometheus
// metrics endpoint. It returns immediately; call Run to block instead.
// Every group must already have at least one file enqueued via NotifyRoll
// (or an explicit WithStartPosition) before Start is called, since
// discovering the first file is the coordination layer's job, not ours.
func (rt *Runtime) Start() error {
	if len(rt.groups) == 0 {
		return fmt.Errorf("walreplicate: no groups configured")
	}
	for _, g := range rt.groups {
		if g.start.Path == "" {
			head, ok := g.queue.Peek()
			if !ok {
				return fmt.Errorf("walreplicate: group %q has no WAL files enqueued; call NotifyRoll before Start", g.name)
			}
			g.start = ZeroPosition(head)
		}
	}

	rt.loopErrs = make(chan error, len(rt.groups))
	for _, g := range rt.groups {
		g := g
		go func() {
			rt.loopErrs <- g.loop.Run(g.start)
		}()
	}
	rt.startMetrics()
	return nil
}

// Run starts the runtime and blocks until ctx is cancelled or a group's
// loop exits with a fatal (non-interrupted) error, then shuts down.
func (rt *Runtime) Run(ctx context.Context) error {
	if err := rt.Start(); err != nil {
		return err
	}

	remaining := len(rt.groups)
	for remaining > 0 {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return rt.Shutdown(shutdownCtx)
		case err := <-rt.loopErrs:
			remaining--
			if err != nil && !errors.Is(err, ports.ErrInterrupted) {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = rt.Shutdown(shutdownCtx)
				return err
			}
		}
	}
	return rt.Shutdown(context.Background())
}

// Shutdown cancels every group's loop and stops the metrics server.
func (rt *Runtime) Shutdown(ctx context.Context) error {
	for _, g := range rt.groups {
		select {
		case <-g.cancel:
		default:
			close(g.cancel)
		}
	}

	if rt.metricsSrv == nil {
		return nil
	}
	if err := rt.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (rt *Runtime) startMetrics() {
	if rt.cfg.Metrics.Addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	rt.metricsSrv = &http.Server{Addr: rt.cfg.Metrics.Addr, Handler: mux}

	go func() {
		if err := rt.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.logger.Error("metrics server exited", err)
		}
	}()
}
