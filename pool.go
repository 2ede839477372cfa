package blocks

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// parallelResult is what a worker reports back after running a
// parallel-offload processor invocation.
type parallelResult struct {
	proc    *ProcessorBlock
	trigger Event
	events  []Event
	err     error
}

// parallelPool is the worker pool from spec §4.9: sized to the graph's
// parallel_count, it runs parallel-offload processor invocations off the
// sync runtime's own goroutine and reports completions over a channel, so
// the runtime can re-inject results via the standard queue insertion rule
// without blocking on any single invocation.
type parallelPool struct {
	sem     *semaphore.Weighted
	results chan parallelResult
	pending atomic.Int64
	wg      sync.WaitGroup
}

// newParallelPool sizes the pool to n concurrent workers. n must be > 0;
// callers only construct a pool when Graph.ParallelCount() > 0.
func newParallelPool(n int) *parallelPool {
	return &parallelPool{
		sem:     semaphore.NewWeighted(int64(n)),
		results: make(chan parallelResult, n),
	}
}

// Submit ships (proc, trigger) to the pool, returning immediately. The
// result is later available from Results. Submit never blocks the caller
// waiting for a free worker slot — acquisition happens inside the spawned
// goroutine — so a burst of submissions observes true parallelism up to
// the pool's size, matching spec scenario S6.
func (p *parallelPool) Submit(ctx context.Context, proc *ProcessorBlock, trigger Event) {
	p.pending.Add(1)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(ctx, 1); err != nil {
			p.pending.Add(-1)
			p.results <- parallelResult{proc: proc, trigger: trigger, err: err}
			return
		}
		events, err := proc.invoke(ctx, trigger)
		p.sem.Release(1)
		p.pending.Add(-1)
		if err != nil {
			p.results <- parallelResult{proc: proc, trigger: trigger, err: err}
			return
		}
		p.results <- parallelResult{proc: proc, trigger: trigger, events: events}
	}()
}

// Pending reports the number of submitted invocations that have not yet
// reported a result.
func (p *parallelPool) Pending() int64 { return p.pending.Load() }

// Results is the channel completions are reported on.
func (p *parallelPool) Results() <-chan parallelResult { return p.results }

// Shutdown waits for all in-flight workers to report, then closes Results.
// Per spec §4.10, this runs before any release hook.
func (p *parallelPool) Shutdown() {
	p.wg.Wait()
	close(p.results)
}
