package blocks

import (
	"fmt"
	"reflect"
	"sync"
)

// WarningKind classifies a non-fatal graph construction finding.
type WarningKind int

const (
	// WarningUnconsumedOutput: a block declares an output event type that
	// no processor consumes (directly, or via interface/subtype dispatch).
	WarningUnconsumedOutput WarningKind = iota
	// WarningNoProducer: a processor declares an input event type that no
	// source or processor declares as an output.
	WarningNoProducer
	// WarningNoConsumer: every one of a processor's declared output types
	// has no consumer (a specialization of WarningUnconsumedOutput, scoped
	// to when ALL of a processor's outputs are dead ends).
	WarningNoConsumer
)

func (k WarningKind) String() string {
	switch k {
	case WarningUnconsumedOutput:
		return "unconsumed_output"
	case WarningNoProducer:
		return "no_producer"
	case WarningNoConsumer:
		return "no_consumer"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal finding surfaced by NewGraph's post-build
// validation pass (spec §4.3). Warnings never prevent a Graph from being
// built; they are logged at Warn level and also returned, so callers can
// assert on them directly in tests.
type Warning struct {
	Kind  WarningKind
	Block string
	Type  TypeKey
}

func (w Warning) String() string {
	if w.Type == nil {
		return fmt.Sprintf("%s: %s", w.Kind, w.Block)
	}
	return fmt.Sprintf("%s: block %q, type %s", w.Kind, w.Block, w.Type)
}

// Graph is a compiled, immutable snapshot of a block collection: sources in
// registration order, and a routing table from event type to the ordered
// list of processors that consume it.
type Graph struct {
	sources []*SourceBlock
	// routing maps an exact TypeKey (struct or interface) to the ordered
	// list of processors registered under that key.
	routing map[TypeKey][]*ProcessorBlock
	// ifaceKeys holds the subset of routing's keys that are interface
	// types, in the order processors were registered under them. Used by
	// Resolve as the ancestor-walk search order for subtype dispatch.
	ifaceKeys []TypeKey
	// outputs is the union of all declared output types.
	outputs map[TypeKey]struct{}

	parallelCount  int
	hasCooperative bool
	processors     []*ProcessorBlock

	cacheMu sync.Mutex
	cache   map[TypeKey][]*ProcessorBlock
}

// Processors returns every distinct processor in the graph, in
// registration order, regardless of how many input types each is
// registered under.
func (g *Graph) Processors() []*ProcessorBlock {
	return append([]*ProcessorBlock(nil), g.processors...)
}

// ParallelCount reports the number of parallel-offload processors in the
// graph (used to size the sync runtime's worker pool).
func (g *Graph) ParallelCount() int { return g.parallelCount }

// HasCooperativeBlocks reports whether the graph contains any block built
// with NewAsyncSource or NewAsyncProcessor.
func (g *Graph) HasCooperativeBlocks() bool { return g.hasCooperative }

// FirstCooperativeBlock returns the name of the first cooperative block
// encountered (sources before processors, otherwise registration order),
// for diagnostics when a cooperative graph is handed to the sync runtime.
// Empty if HasCooperativeBlocks is false.
func (g *Graph) FirstCooperativeBlock() string {
	for _, s := range g.sources {
		if s.cooperative {
			return s.name
		}
	}
	for _, p := range g.processors {
		if p.coop {
			return p.name
		}
	}
	return ""
}

// FirstParallelBlock returns the name of the first parallel-offload
// processor encountered, for diagnostics when such a graph is handed to
// the async runtime. Empty if ParallelCount is zero.
func (g *Graph) FirstParallelBlock() string {
	for _, p := range g.processors {
		if p.class == DispatchParallel {
			return p.name
		}
	}
	return ""
}

// Sources returns the graph's sources in registration order.
func (g *Graph) Sources() []*SourceBlock {
	return append([]*SourceBlock(nil), g.sources...)
}

// NewGraph classifies blocks into sources and processors, builds the
// routing table, and runs post-build validation. It returns a frozen Graph
// along with any non-fatal Warning findings; a non-nil error is ErrNoBlocks
// for an empty slice, otherwise a fatal wiring problem (WiringError).
func NewGraph(bs []Block) (*Graph, []Warning, error) {
	if len(bs) == 0 {
		return nil, nil, ErrNoBlocks
	}

	g := &Graph{
		routing: make(map[TypeKey][]*ProcessorBlock),
		outputs: make(map[TypeKey]struct{}),
		cache:   make(map[TypeKey][]*ProcessorBlock),
	}

	seenIface := make(map[TypeKey]bool)
	var processors []*ProcessorBlock

	for _, b := range bs {
		switch v := b.(type) {
		case *SourceBlock:
			if len(v.outputs) == 0 {
				return nil, nil, &WiringError{Block: v.name, Message: "declares no output event types"}
			}
			if v.cooperative {
				g.hasCooperative = true
			}
			g.sources = append(g.sources, v)
			for _, o := range v.outputs {
				g.outputs[o] = struct{}{}
			}

		case *ProcessorBlock:
			if len(v.inputs) == 0 {
				return nil, nil, &WiringError{Block: v.name, Message: "declares no input event types"}
			}
			if len(v.outputs) == 0 {
				return nil, nil, &WiringError{Block: v.name, Message: "declares no output event types"}
			}
			if v.coop {
				g.hasCooperative = true
			}
			if v.class == DispatchParallel {
				g.parallelCount++
			}
			for _, in := range v.inputs {
				g.routing[in] = append(g.routing[in], v)
				if in.Kind() == reflect.Interface && !seenIface[in] {
					seenIface[in] = true
					g.ifaceKeys = append(g.ifaceKeys, in)
				}
			}
			for _, o := range v.outputs {
				g.outputs[o] = struct{}{}
			}
			processors = append(processors, v)

		default:
			return nil, nil, &WiringError{Block: b.Name(), Message: "block is neither a source nor a processor"}
		}
	}

	g.processors = processors
	warnings := g.validate(processors)
	return g, warnings, nil
}

// validate runs the post-build checks described in spec §4.3: unconsumed
// producer output, processors with no producer for any declared input, and
// processors whose every output has no consumer.
func (g *Graph) validate(processors []*ProcessorBlock) []Warning {
	var warnings []Warning

	producedTypes := make(map[TypeKey]struct{}, len(g.outputs))
	for t := range g.outputs {
		producedTypes[t] = struct{}{}
	}

	isConsumed := func(t TypeKey) bool {
		if _, ok := g.routing[t]; ok {
			return true
		}
		if t.Kind() != reflect.Interface {
			for _, ik := range g.ifaceKeys {
				if t.Implements(ik) {
					return true
				}
			}
		}
		for k := range g.routing {
			if k.Kind() == reflect.Interface && t.Implements(k) {
				return true
			}
		}
		return false
	}

	// struct{} is the "no value" output of a sink; it is never treated as an
	// unconsumed output, and a processor emitting it is never a dead end.
	noValue := reflect.TypeOf(struct{}{})

	for t := range g.outputs {
		if t != noValue && !isConsumed(t) {
			warnings = append(warnings, Warning{Kind: WarningUnconsumedOutput, Block: "*", Type: t})
		}
	}

	for _, p := range processors {
		anyProduced := false
		for _, in := range p.inputs {
			if _, ok := producedTypes[in]; ok {
				anyProduced = true
				break
			}
			if in.Kind() == reflect.Interface {
				for out := range producedTypes {
					if out.Implements(in) {
						anyProduced = true
						break
					}
				}
			}
			if anyProduced {
				break
			}
		}
		if !anyProduced {
			warnings = append(warnings, Warning{Kind: WarningNoProducer, Block: p.name})
		}

		allDead := true
		for _, out := range p.outputs {
			if out == noValue || isConsumed(out) {
				allDead = false
				break
			}
		}
		if allDead {
			warnings = append(warnings, Warning{Kind: WarningNoConsumer, Block: p.name})
		}
	}

	return warnings
}
