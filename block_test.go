package blocks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tick struct{ N int }
type doubled struct{ N int }

func TestNewSourceDefaultName(t *testing.T) {
	s := NewSource(func(ctx context.Context) ([]tick, error) {
		return []tick{{N: 1}}, nil
	})
	assert.Contains(t, s.Name(), "TestNewSourceDefaultName")
}

func TestNewSourceExplicitName(t *testing.T) {
	s := NewSource(func(ctx context.Context) ([]tick, error) {
		return nil, nil
	}, WithName("ticker"))
	assert.Equal(t, "ticker", s.Name())
}

func TestNewSourceWrapsError(t *testing.T) {
	cause := errors.New("boom")
	s := NewSource(func(ctx context.Context) ([]tick, error) {
		return nil, cause
	}, WithName("failing"))
	_, err := s.invoke(context.Background())
	require.Error(t, err)
	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "failing", srcErr.Block)
	require.ErrorIs(t, err, cause)
}

func TestNewProcessorInvokeAndWrap(t *testing.T) {
	p := NewProcessor(func(ctx context.Context, in tick) ([]doubled, error) {
		return []doubled{{N: in.N * 2}}, nil
	}, WithName("doubler"))

	out, err := p.invokeBlock(context.Background(), tick{N: 3})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, doubled{N: 6}, out[0])
}

func TestNewProcessorRejectsWrongInputType(t *testing.T) {
	p := NewProcessor(func(ctx context.Context, in tick) ([]doubled, error) {
		return nil, nil
	}, WithName("doubler"))

	_, err := p.invokeBlock(context.Background(), doubled{N: 1})
	require.Error(t, err)
}

func TestNewProcessorErrorWrapping(t *testing.T) {
	cause := errors.New("bad input")
	p := NewProcessor(func(ctx context.Context, in tick) ([]doubled, error) {
		return nil, cause
	}, WithName("failing"))

	_, err := p.invokeBlock(context.Background(), tick{N: 1})
	var procErr *ProcessorError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "failing", procErr.Block)
	require.ErrorIs(t, err, cause)
	assert.NotEmpty(t, procErr.CorrelationID)
}

func TestSumDecomposesInputs(t *testing.T) {
	p := NewProcessor(func(ctx context.Context, in sumEvent) ([]doubled, error) {
		return nil, nil
	}, Sum(eventA{}), WithName("sum-consumer"))
	assert.Len(t, p.InputTypes(), 1)
	assert.Equal(t, TypeKeyOf(eventA{}), p.InputTypes()[0])
}

func TestNewAsyncSourceIsCooperative(t *testing.T) {
	s := NewAsyncSource(func(ctx context.Context) ([]tick, error) { return nil, nil })
	assert.True(t, s.Cooperative())
}

func TestNewAsyncProcessorIsCooperative(t *testing.T) {
	p := NewAsyncProcessor(func(ctx context.Context, in tick) ([]doubled, error) { return nil, nil })
	assert.True(t, p.Cooperative())
}

func TestNewParallelProcessorClass(t *testing.T) {
	p := NewParallelProcessor(func(ctx context.Context, in tick) ([]doubled, error) { return nil, nil })
	assert.Equal(t, DispatchParallel, p.Class())
}
