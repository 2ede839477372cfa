package blocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawEvent struct{ V int }
type derivedEvent struct{ V int }

func TestNewGraphRejectsEmpty(t *testing.T) {
	_, _, err := NewGraph(nil)
	require.ErrorIs(t, err, ErrNoBlocks)
}

func TestNewGraphBuildsRoutingTable(t *testing.T) {
	src := NewSource(func(ctx context.Context) ([]rawEvent, error) { return nil, nil })
	proc := NewProcessor(func(ctx context.Context, in rawEvent) ([]derivedEvent, error) { return nil, nil })
	consumer := NewProcessor(func(ctx context.Context, in derivedEvent) ([]struct{}, error) { return nil, nil })

	g, warnings, err := NewGraph([]Block{src, proc, consumer})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Len(t, g.Sources(), 1)
	assert.Len(t, g.Processors(), 2)

	procs := g.Resolve(TypeKeyOf(rawEvent{}))
	require.Len(t, procs, 1)
	assert.Equal(t, proc.Name(), procs[0].Name())
}

func TestNewGraphWarnsOnUnconsumedOutput(t *testing.T) {
	src := NewSource(func(ctx context.Context) ([]rawEvent, error) { return nil, nil })

	_, warnings, err := NewGraph([]Block{src})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarningUnconsumedOutput, warnings[0].Kind)
}

func TestNewGraphWarnsOnNoProducer(t *testing.T) {
	proc := NewProcessor(func(ctx context.Context, in rawEvent) ([]derivedEvent, error) { return nil, nil }, WithName("orphan"))

	_, warnings, err := NewGraph([]Block{proc})
	require.NoError(t, err)

	var kinds []WarningKind
	for _, w := range warnings {
		kinds = append(kinds, w.Kind)
	}
	assert.Contains(t, kinds, WarningNoProducer)
}

func TestNewGraphRejectsProcessorWithNoInputs(t *testing.T) {
	bad := &ProcessorBlock{name: "bad"}
	_, _, err := NewGraph([]Block{bad})
	require.Error(t, err)
	var wiring *WiringError
	require.ErrorAs(t, err, &wiring)
}

func TestNewGraphRejectsSumWithZeroMembers(t *testing.T) {
	proc := NewProcessor(func(ctx context.Context, in sumEvent) ([]derivedEvent, error) { return nil, nil }, Sum(), WithName("empty-sum"))

	_, _, err := NewGraph([]Block{proc})
	var wiring *WiringError
	require.ErrorAs(t, err, &wiring)
	assert.Equal(t, "empty-sum", wiring.Block)
}

func TestNewGraphRejectsEmitsWithZeroMembersOnSource(t *testing.T) {
	src := NewSource(func(ctx context.Context) ([]sumEvent, error) { return nil, nil }, Emits(), WithName("empty-emits"))

	_, _, err := NewGraph([]Block{src})
	var wiring *WiringError
	require.ErrorAs(t, err, &wiring)
	assert.Equal(t, "empty-emits", wiring.Block)
}

func TestGraphParallelCountAndCooperative(t *testing.T) {
	par := NewParallelProcessor(func(ctx context.Context, in rawEvent) ([]derivedEvent, error) { return nil, nil })
	coop := NewAsyncProcessor(func(ctx context.Context, in derivedEvent) ([]struct{}, error) { return nil, nil })

	g, _, err := NewGraph([]Block{par, coop})
	require.NoError(t, err)
	assert.Equal(t, 1, g.ParallelCount())
	assert.True(t, g.HasCooperativeBlocks())
}
