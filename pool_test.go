package blocks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/severstal-digital/typed-blocks/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelPoolRunsSubmissionsConcurrently(t *testing.T) {
	defer testutil.CheckGoroutines(3 * time.Second)(t)

	pool := newParallelPool(3)
	var inFlight atomic.Int32
	var maxInFlight atomic.Int32

	proc := NewParallelProcessor(func(ctx context.Context, in tick) ([]doubled, error) {
		n := inFlight.Add(1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		inFlight.Add(-1)
		return []doubled{{N: in.N * 2}}, nil
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		pool.Submit(ctx, proc, tick{N: i})
	}

	for i := 0; i < 3; i++ {
		<-pool.Results()
	}

	assert.Equal(t, int32(3), maxInFlight.Load())
	pool.Shutdown()
}

func TestParallelPoolReportsError(t *testing.T) {
	defer testutil.CheckGoroutines(3 * time.Second)(t)

	pool := newParallelPool(1)
	cause := errors.New("boom")
	proc := NewParallelProcessor(func(ctx context.Context, in tick) ([]doubled, error) {
		return nil, cause
	})

	pool.Submit(context.Background(), proc, tick{N: 1})
	res := <-pool.Results()
	require.Error(t, res.err)
	pool.Shutdown()
}

func TestParallelPoolPendingTracksInFlight(t *testing.T) {
	defer testutil.CheckGoroutines(3 * time.Second)(t)

	pool := newParallelPool(1)
	started := make(chan struct{})
	release := make(chan struct{})
	proc := NewParallelProcessor(func(ctx context.Context, in tick) ([]doubled, error) {
		close(started)
		<-release
		return nil, nil
	})

	pool.Submit(context.Background(), proc, tick{N: 1})
	<-started
	assert.Equal(t, int64(1), pool.Pending())

	close(release)
	<-pool.Results()
	pool.Shutdown()
}
