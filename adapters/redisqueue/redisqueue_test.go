package redisqueue

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	blocks "github.com/severstal-digital/typed-blocks"
)

func newUnreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
	})
}

func TestSourceWrapsConnectionError(t *testing.T) {
	cfg := Config{Client: newUnreachableClient(), Key: "jobs", PopTimeout: time.Second}
	src := NewSource(cfg)

	app, err := blocks.NewApp([]blocks.Block{src}, blocks.WithOnce(true))
	require.NoError(t, err)

	err = app.Run(context.Background())
	require.Error(t, err)
	var srcErr *blocks.SourceError
	require.ErrorAs(t, err, &srcErr)
}

func TestSinkWrapsConnectionError(t *testing.T) {
	cfg := Config{Client: newUnreachableClient(), Key: "jobs"}
	sink := NewSink(cfg)

	trigger := blocks.NewSource(func(ctx context.Context) ([]Enqueue, error) {
		return []Enqueue{{Payload: "hello"}}, nil
	})

	app, err := blocks.NewApp([]blocks.Block{trigger, sink}, blocks.WithOnce(true))
	require.NoError(t, err)

	err = app.Run(context.Background())
	require.Error(t, err)
	var procErr *blocks.ProcessorError
	require.ErrorAs(t, err, &procErr)
}
