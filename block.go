package blocks

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
)

// DispatchClass selects how the runtime invokes a processor.
type DispatchClass int

const (
	// DispatchInline runs the processor on the calling worker: the sync
	// runtime's single goroutine, or one of the async runtime's tasks.
	DispatchInline DispatchClass = iota
	// DispatchParallel ships the processor's invocation to the parallel
	// worker pool (see NewParallelProcessor). Only the sync runtime
	// supports this class.
	DispatchParallel
)

// Block is a participant in a Graph: either a SourceBlock or a
// ProcessorBlock, produced by the New*/NewAsync*/NewParallel* constructors
// below.
type Block interface {
	isBlock()
	// Name returns the block's display name, for logs and errors.
	Name() string
}

// SourceBlock is a Block that produces events with no input. Construct one
// with NewSource or NewAsyncSource.
type SourceBlock struct {
	name         string
	cooperative  bool
	outputs      []TypeKey
	release      func() error
	invoke       func(ctx context.Context) ([]Event, error)
}

func (*SourceBlock) isBlock()        {}
func (s *SourceBlock) Name() string  { return s.name }
func (s *SourceBlock) Cooperative() bool { return s.cooperative }
func (s *SourceBlock) Outputs() []TypeKey {
	return append([]TypeKey(nil), s.outputs...)
}

// ProcessorBlock is a Block that consumes one event of its declared input
// type(s) and returns zero or more further events. Construct one with
// NewProcessor, NewAsyncProcessor, or NewParallelProcessor.
type ProcessorBlock struct {
	name    string
	class   DispatchClass
	coop    bool
	inputs  []TypeKey
	outputs []TypeKey
	release func() error
	invoke  func(ctx context.Context, e Event) ([]Event, error)
}

func (*ProcessorBlock) isBlock()       {}
func (p *ProcessorBlock) Name() string { return p.name }
func (p *ProcessorBlock) Cooperative() bool { return p.coop }
func (p *ProcessorBlock) Class() DispatchClass { return p.class }
func (p *ProcessorBlock) InputTypes() []TypeKey {
	return append([]TypeKey(nil), p.inputs...)
}
func (p *ProcessorBlock) OutputTypes() []TypeKey {
	return append([]TypeKey(nil), p.outputs...)
}

func (p *ProcessorBlock) invokeBlock(ctx context.Context, e Event) ([]Event, error) {
	out, err := p.invoke(ctx, e)
	if err != nil {
		return nil, &ProcessorError{Block: p.name, InputType: reflect.TypeOf(e), Input: e, Cause: err, CorrelationID: newCorrelationID()}
	}
	return out, nil
}

// funcName derives a display name from a handler's reflected identity,
// used when WithName is omitted.
func funcName(fn any) string {
	ptr := reflect.ValueOf(fn).Pointer()
	if f := runtime.FuncForPC(ptr); f != nil {
		return f.Name()
	}
	return fmt.Sprintf("block@%#x", ptr)
}

func outputsOf[O any](cfg *blockConfig) []TypeKey {
	if cfg.sumOutputSet {
		return cfg.sumOutputs
	}
	return []TypeKey{typeKeyOfType[O]()}
}

func inputsOf[I any](cfg *blockConfig) []TypeKey {
	if cfg.sumInputSet {
		return cfg.sumInputs
	}
	return []TypeKey{typeKeyOfType[I]()}
}

func eventSlice[O any](in []O) []Event {
	out := make([]Event, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// NewSource builds a blocking source block: fn is called once per tick and
// may block the calling runtime until it returns. Its declared output type
// is O; pass Emits(...) if O is an interface implemented by more than one
// concrete event type, so wiring warnings resolve per concrete type.
func NewSource[O any](fn func(ctx context.Context) ([]O, error), opts ...BlockOption) *SourceBlock {
	cfg := resolveBlockConfig(opts)
	name := cfg.name
	if name == "" {
		name = funcName(fn)
	}
	return &SourceBlock{
		name:    name,
		outputs: outputsOf[O](cfg),
		release: cfg.release,
		invoke: func(ctx context.Context) ([]Event, error) {
			out, err := fn(ctx)
			if err != nil {
				return nil, &SourceError{Block: name, Cause: err}
			}
			return eventSlice(out), nil
		},
	}
}

// NewAsyncSource builds a cooperative source block, schedulable only on
// App.RunAsync. Semantically identical to NewSource otherwise.
func NewAsyncSource[O any](fn func(ctx context.Context) ([]O, error), opts ...BlockOption) *SourceBlock {
	s := NewSource(fn, opts...)
	s.cooperative = true
	return s
}

// NewProcessor builds a blocking, inline-dispatched processor block: fn
// consumes one event of type I and may block the calling runtime until it
// returns. Pass Sum(...) if I is an interface type and you want the
// processor registered directly under each concrete member, rather than
// relying on the dispatch table's interface/subtype fallback; pass
// Emits(...) for the equivalent on the output side.
func NewProcessor[I, O any](fn func(ctx context.Context, in I) ([]O, error), opts ...BlockOption) *ProcessorBlock {
	cfg := resolveBlockConfig(opts)
	name := cfg.name
	if name == "" {
		name = funcName(fn)
	}
	return &ProcessorBlock{
		name:    name,
		class:   DispatchInline,
		inputs:  inputsOf[I](cfg),
		outputs: outputsOf[O](cfg),
		release: cfg.release,
		invoke: func(ctx context.Context, e Event) ([]Event, error) {
			in, ok := e.(I)
			if !ok {
				return nil, fmt.Errorf("blocks: processor %q received event of type %T, not assignable to declared input type", name, e)
			}
			out, err := fn(ctx, in)
			if err != nil {
				return nil, err
			}
			return eventSlice(out), nil
		},
	}
}

// NewAsyncProcessor builds a cooperative processor block, schedulable only
// on App.RunAsync. Semantically identical to NewProcessor otherwise.
func NewAsyncProcessor[I, O any](fn func(ctx context.Context, in I) ([]O, error), opts ...BlockOption) *ProcessorBlock {
	p := NewProcessor(fn, opts...)
	p.coop = true
	return p
}

// NewParallelProcessor builds a CPU-bound processor block dispatched to
// the sync runtime's parallel worker pool rather than run inline. fn is
// never called from the runtime's own goroutine; it runs on a pool worker,
// bounded by the graph's parallel_count. Only App.Run (the sync runtime)
// accepts graphs containing a parallel-offload processor; App.RunAsync
// rejects them at construction (see Graph's design notes on parallel
// dispatch being exposed only through the sync path).
func NewParallelProcessor[I, O any](fn func(ctx context.Context, in I) ([]O, error), opts ...BlockOption) *ProcessorBlock {
	p := NewProcessor(fn, opts...)
	p.class = DispatchParallel
	return p
}
