package blocks

import (
	"context"
	"sync"
	"sync/atomic"
)

// eventQueue is the bounded deque described in spec §4.6/§6: PushFront is
// used by the sync runtime (both for source emissions and processor
// emissions, both documented as "pushed at front in reverse order", which
// reduces to prepending the emitted batch verbatim); PushBack/DrainAll are
// used by the async runtime's breadth-first per-tick draining. Every push
// intercepts and drops the configured terminal event, flipping alive to
// false rather than enqueuing it.
type eventQueue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	items     []Event
	capacity  int
	terminal  TypeKey
	alive     *atomic.Bool
}

func newEventQueue(capacity int, terminal TypeKey, alive *atomic.Bool) *eventQueue {
	q := &eventQueue{capacity: capacity, terminal: terminal, alive: alive}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// waitSpaceLocked blocks the caller (mu held) while the queue is at
// capacity, implementing the backpressure policy from spec §9: block
// rather than drop. Returns ctx.Err() if ctx is canceled first.
func (q *eventQueue) waitSpaceLocked(ctx context.Context) error {
	if q.capacity <= 0 {
		return nil
	}
	stop := context.AfterFunc(ctx, q.cond.Broadcast)
	defer stop()
	for len(q.items) >= q.capacity {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.cond.Wait()
	}
	return nil
}

// filterTerminal drops any event matching the terminal type, setting alive
// to false the first (and every) time one is observed, and returns the
// remaining events in their original order.
func (q *eventQueue) filterTerminal(events []Event) []Event {
	filtered := events[:0:0]
	for _, e := range events {
		if matchesTerminal(q.terminal, e) {
			q.alive.Store(false)
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// PushFront inserts events so that filtered[0] is the next event PopFront
// returns: a source's own emissions keep their emission order (net FIFO
// across one source call), and a processor's emissions are drained,
// depth-first, ahead of whatever was already queued.
func (q *eventQueue) PushFront(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.waitSpaceLocked(ctx); err != nil {
		return err
	}
	filtered := q.filterTerminal(events)
	if len(filtered) == 0 {
		return nil
	}
	q.items = append(filtered, q.items...)
	q.cond.Broadcast()
	return nil
}

// PushBack appends events in order, used by the async runtime so that
// inter-tick FIFO ordering holds even though intra-tick ordering across
// concurrent tasks is unspecified.
func (q *eventQueue) PushBack(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.waitSpaceLocked(ctx); err != nil {
		return err
	}
	filtered := q.filterTerminal(events)
	q.items = append(q.items, filtered...)
	q.cond.Broadcast()
	return nil
}

// PushBackNonBlocking appends a single event without waiting for capacity,
// dropping it silently if the queue is already at capacity. Used for
// best-effort telemetry (MetricSample) that must never apply backpressure
// to the dispatch loop that produced it.
func (q *eventQueue) PushBackNonBlocking(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.capacity > 0 && len(q.items) >= q.capacity {
		return
	}
	if matchesTerminal(q.terminal, e) {
		q.alive.Store(false)
		return
	}
	q.items = append(q.items, e)
	q.cond.Broadcast()
}

// PopFront removes and returns the front event, if any.
func (q *eventQueue) PopFront() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	e := q.items[0]
	q.items = q.items[1:]
	q.cond.Broadcast()
	return e, true
}

// DrainAll removes and returns every currently queued event as one batch,
// for the async runtime's breadth-first tick drain.
func (q *eventQueue) DrainAll() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	batch := q.items
	q.items = nil
	q.cond.Broadcast()
	return batch
}

// Len reports the number of events currently queued.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
