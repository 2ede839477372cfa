package blocks

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/severstal-digital/typed-blocks/internal/blogglog"
)

// App is the convenience facade from spec §6: it holds a compiled Graph
// and the configuration needed to drive it, and exposes Run/RunAsync to
// start execution.
type App struct {
	graph    *Graph
	warnings []Warning
	cfg      *appConfig
	running  atomic.Bool
}

// NewApp compiles blocks into a Graph via NewGraph and returns an App ready
// to run. Any non-fatal Warning findings are logged immediately (at Warn
// level, via the resolved logger) and also retained on the App.
func NewApp(bs []Block, opts ...Option) (*App, error) {
	cfg := resolveAppConfig(opts)
	if cfg.logger == nil {
		// No WithLogger call at all: default to the logiface-backed
		// implementation. An explicit WithLogger(NoopLogger{})/WithLogger(nil)
		// is left alone, so a caller can actually silence logging.
		cfg.logger = blogglog.New()
	}

	g, warnings, err := NewGraph(bs)
	if err != nil {
		return nil, err
	}

	for _, w := range warnings {
		cfg.logger.Warn(w.String(), map[string]any{"kind": w.Kind.String(), "block": w.Block})
	}

	return &App{graph: g, warnings: warnings, cfg: cfg}, nil
}

// Graph returns the App's compiled Graph.
func (a *App) Graph() *Graph { return a.graph }

// Warnings returns the non-fatal findings from graph construction.
func (a *App) Warnings() []Warning { return append([]Warning(nil), a.warnings...) }

// MetricTimeInterval returns the interval configured via WithMetrics, for
// metric-consuming adapters (e.g. adapters/promexport) to use as their own
// aggregation window. Zero if WithMetrics was not supplied.
func (a *App) MetricTimeInterval() time.Duration { return a.cfg.metricTimeInterval }

// CollectMetric reports whether WithMetrics was supplied.
func (a *App) CollectMetric() bool { return a.cfg.collectMetric }

// Run drives the graph on the synchronous runtime (spec §4.7): a single
// goroutine polls sources then drains the queue depth-first each tick.
// Parallel-offload processors, if any, are dispatched to a worker pool
// sized to Graph.ParallelCount(). Run returns ErrAlreadyRunning if called
// concurrently with another Run/RunAsync on the same App, and
// RuntimeMismatchError if the graph contains a cooperative block.
func (a *App) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	rt, err := newSyncRuntime(a.graph, a.cfg)
	if err != nil {
		return err
	}
	return rt.Run(ctx)
}

// RunAsync drives the graph on the cooperative runtime (spec §4.8):
// sources and processors are scheduled concurrently per tick via
// golang.org/x/sync/errgroup, with blocking blocks fanned out to a
// semaphore-bounded helper executor. RunAsync returns RuntimeMismatchError
// if the graph contains a parallel-offload processor.
func (a *App) RunAsync(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	rt, err := newAsyncRuntime(a.graph, a.cfg)
	if err != nil {
		return err
	}
	return rt.Run(ctx)
}
