package blocks

import (
	"context"
	"reflect"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// asyncRuntime implements spec §4.8: cooperative blocks run as concurrent
// tasks on an errgroup; blocking blocks are fanned out to a semaphore-
// bounded helper executor so they never hold up the scheduler. Draining is
// breadth-first per tick: every event currently queued is dispatched
// concurrently, results are awaited, and the queue is re-checked until it
// is empty.
type asyncRuntime struct {
	graph       *Graph
	queue       *eventQueue
	lifecycle   *lifecycleController
	logger      Logger
	minInterval time.Duration
	once        bool
	metrics     bool
	helper      *semaphore.Weighted
}

func newAsyncRuntime(g *Graph, cfg *appConfig) (*asyncRuntime, error) {
	if g.ParallelCount() > 0 {
		return nil, &RuntimeMismatchError{Block: g.FirstParallelBlock(), Runtime: "async", Reason: "block is parallel-offload (built with NewParallelProcessor); parallel dispatch is only available via Run"}
	}

	concurrency := cfg.asyncConcurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	lifecycle := newLifecycleController(g.Sources(), g.Processors(), nil, cfg.logger)
	queue := newEventQueue(cfg.queueCapacity, cfg.terminal, &lifecycle.alive)

	return &asyncRuntime{
		graph:       g,
		queue:       queue,
		lifecycle:   lifecycle,
		logger:      cfg.logger,
		minInterval: cfg.minInterval,
		once:        cfg.once,
		metrics:     cfg.collectMetric,
		helper:      semaphore.NewWeighted(int64(concurrency)),
	}, nil
}

func (r *asyncRuntime) Run(ctx context.Context) error {
	defer r.lifecycle.Shutdown()

	r.logger.Info("async run started", map[string]any{"once": r.once})

	for {
		start := time.Now()

		if err := r.tick(ctx); err != nil {
			r.lifecycle.Stop()
			return err
		}

		if r.once || !r.lifecycle.Alive() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if wait := r.minInterval - time.Since(start); wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
	}
}

// callSource runs a source, dispatching blocking sources to the helper
// executor so a cooperative source scheduled in the same tick is never
// blocked behind it.
func (r *asyncRuntime) callSource(ctx context.Context, s *SourceBlock) ([]Event, error) {
	if s.Cooperative() {
		return s.invoke(ctx)
	}
	if err := r.helper.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.helper.Release(1)
	return s.invoke(ctx)
}

// callProcessor is the processor-side equivalent of callSource.
func (r *asyncRuntime) callProcessor(ctx context.Context, p *ProcessorBlock, e Event) ([]Event, error) {
	if p.Cooperative() {
		return p.invokeBlock(ctx, e)
	}
	if err := r.helper.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.helper.Release(1)
	return p.invokeBlock(ctx, e)
}

// tick fans out source polling, then repeatedly drains whatever is queued
// as one concurrent batch, until the queue is empty.
func (r *asyncRuntime) tick(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, src := range r.graph.Sources() {
		src := src
		g.Go(func() error {
			events, err := r.callSource(gctx, src)
			if err != nil {
				r.logger.Error("source failed", map[string]any{"block": src.Name(), "error": err.Error()})
				return err
			}
			return r.queue.PushBack(gctx, events)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for r.lifecycle.Alive() {
		batch := r.queue.DrainAll()
		if len(batch) == 0 {
			return nil
		}

		dg, dgctx := errgroup.WithContext(ctx)
		for _, e := range batch {
			e := e
			procs := r.graph.Resolve(reflect.TypeOf(e))
			for _, p := range procs {
				p := p
				dg.Go(func() error {
					start := time.Now()
					out, err := r.callProcessor(dgctx, p, e)
					if _, isSample := e.(MetricSample); r.metrics && !isSample {
						r.queue.PushBackNonBlocking(MetricSample{Block: p.Name(), Duration: time.Since(start), Err: err != nil})
					}
					if err != nil {
						r.logger.Error("processor failed", map[string]any{"block": p.Name(), "error": err.Error()})
						return err
					}
					return r.queue.PushBack(dgctx, out)
				})
			}
		}
		if err := dg.Wait(); err != nil {
			return err
		}
	}

	return nil
}
