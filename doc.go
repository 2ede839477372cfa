// Package blocks builds and runs event-driven dataflow graphs from a
// declarative collection of typed blocks.
//
// A graph is described as a flat slice of blocks: sources (which produce
// events) and processors (which consume one event and produce zero or more
// further events). Edges are never written by hand — they are derived
// entirely from the event types each block declares via its constructor's
// type parameters, following the rules in [NewProcessor] and [NewSource].
// [NewGraph] compiles the blocks into a routing table; [NewApp] wraps a
// graph in an [App], whose [App.Run] and [App.RunAsync] methods run it.
//
// # Architecture
//
// [Graph] holds the frozen routing table (event type -> ordered processor
// list) built by [NewGraph]. [App] drives it via one of three execution
// models, selected entirely by which block constructors were used:
//
//   - sync: a single-threaded cooperative loop ([App.Run]) that drains the
//     internal queue depth-first.
//   - async: a cooperative loop scheduled on [golang.org/x/sync/errgroup]
//     ([App.RunAsync]) that drains the queue breadth-first per tick.
//   - parallel offload: processors built with [NewParallelProcessor] are
//     dispatched to a bounded worker pool; only the sync runtime supports
//     this.
//
// # Thread safety
//
// A [Graph]'s routing table is immutable once built and safe for concurrent
// reads. The event queue is owned exclusively by whichever runtime is
// driving it — do not share one [App] across concurrent [App.Run] calls.
//
// # Shutdown
//
// A run ends when a processor or source returns an error, when a terminal
// event (configured via [WithTerminalEvent]) is observed, or when the
// caller cancels the context. In every case, release hooks registered via
// [WithRelease] run exactly once per distinct block, in source-then-
// processor order.
package blocks
