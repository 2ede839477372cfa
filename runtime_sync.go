package blocks

import (
	"context"
	"reflect"
	"time"
)

// syncRuntime implements spec §4.7: one tick polls every source in
// registration order, then drains the queue depth-first, dispatching each
// event to its resolved processors in list order. Parallel-offload
// processors are submitted to a pool instead of invoked inline; the drain
// loop blocks on the pool only once the queue itself is empty.
type syncRuntime struct {
	graph       *Graph
	queue       *eventQueue
	lifecycle   *lifecycleController
	pool        *parallelPool
	logger      Logger
	minInterval time.Duration
	once        bool
	metrics     bool
}

func newSyncRuntime(g *Graph, cfg *appConfig) (*syncRuntime, error) {
	if g.HasCooperativeBlocks() {
		return nil, &RuntimeMismatchError{Block: g.FirstCooperativeBlock(), Runtime: "sync", Reason: "block is cooperative (built with NewAsyncSource/NewAsyncProcessor); use RunAsync"}
	}

	var pool *parallelPool
	if n := g.ParallelCount(); n > 0 {
		pool = newParallelPool(n)
	}

	lifecycle := newLifecycleController(g.Sources(), g.Processors(), pool, cfg.logger)
	queue := newEventQueue(cfg.queueCapacity, cfg.terminal, &lifecycle.alive)

	return &syncRuntime{
		graph:       g,
		queue:       queue,
		lifecycle:   lifecycle,
		pool:        pool,
		logger:      cfg.logger,
		minInterval: cfg.minInterval,
		once:        cfg.once,
		metrics:     cfg.collectMetric,
	}, nil
}

// Run drains ticks until stopped, per the once/min_interval loop control of
// spec §4.7.
func (r *syncRuntime) Run(ctx context.Context) error {
	defer r.lifecycle.Shutdown()

	r.logger.Info("sync run started", map[string]any{"once": r.once})

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

// tick polls every source, then drains derived work depth-first, including
// waiting for any parallel-offload invocations it submitted.
func (r *syncRuntime) tick(ctx context.Context) error {
	for _, src := range r.graph.Sources() {
		events, err := src.invoke(ctx)
		if err != nil {
			r.logger.Error("source failed", map[string]any{"block": src.Name(), "error": err.Error()})
			return err
		}
		if err := r.queue.PushFront(ctx, events); err != nil {
			return err
		}
	}

	for r.lifecycle.Alive() {
		for r.lifecycle.Alive() {
			e, ok := r.queue.PopFront()
			if !ok {
				break
			}
			if err := r.dispatch(ctx, e); err != nil {
				return err
			}
		}

		if r.pool == nil || r.pool.Pending() == 0 || !r.lifecycle.Alive() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-r.pool.Results():
			if res.err != nil {
				perr := &PoolError{Block: res.proc.Name(), InputType: reflect.TypeOf(res.trigger), Input: res.trigger, Cause: res.err, CorrelationID: newCorrelationID()}
				r.logger.Error("parallel worker failed", map[string]any{"block": res.proc.Name(), "error": res.err.Error()})
				return perr
			}
			if err := r.queue.PushFront(ctx, res.events); err != nil {
				return err
			}
		}
	}

	return nil
}

// dispatch resolves and invokes the processors applicable to e, in
// registration order, per spec invariant 3.
func (r *syncRuntime) dispatch(ctx context.Context, e Event) error {
	procs := r.graph.Resolve(reflect.TypeOf(e))
	for _, p := range procs {
		if p.Class() == DispatchParallel {
			r.pool.Submit(ctx, p, e)
			continue
		}
		start := time.Now()
		out, err := p.invokeBlock(ctx, e)
		if _, isSample := e.(MetricSample); !isSample {
			r.recordMetric(p, start, err)
		}
		if err != nil {
			r.logger.Error("processor failed", map[string]any{"block": p.Name(), "error": err.Error()})
			return err
		}
		if err := r.queue.PushFront(ctx, out); err != nil {
			return err
		}
	}
	return nil
}

// recordMetric pushes a MetricSample for p's invocation when metrics
// collection is enabled. The sample is best-effort: a full queue drops it
// rather than applying backpressure to the dispatch loop.
func (r *syncRuntime) recordMetric(p *ProcessorBlock, start time.Time, err error) {
	if !r.metrics {
		return
	}
	sample := MetricSample{Block: p.Name(), Duration: time.Since(start), Err: err != nil}
	r.queue.PushBackNonBlocking(sample)
}
