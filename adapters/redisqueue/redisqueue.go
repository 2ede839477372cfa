// Package redisqueue wires a Redis list as a blocks source and sink,
// grounded on the way the example pack's foundation/integration/database/redis
// package wraps go-redis with explicit config and health-check semantics.
// It is an example consumer of the blocks core; the core never imports it.
package redisqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	blocks "github.com/severstal-digital/typed-blocks"
)

// Config configures a Source/Processor pair backed by a single Redis list
// key, used as a FIFO work queue (BLPOP to consume, RPUSH to enqueue).
type Config struct {
	Client     *redis.Client
	Key        string
	PopTimeout time.Duration
}

// Message is the event type emitted for each value popped off Key.
type Message struct {
	Payload string
}

// Enqueue is the event type a processor returns to push payload back onto
// Key (e.g. for retry-on-failure pipelines).
type Enqueue struct {
	Payload string
}

// NewSource builds a blocking blocks.SourceBlock that BLPOPs one message
// from cfg.Key per invocation. A timeout with no message yields zero events
// rather than an error, so the runtime simply ticks again.
func NewSource(cfg Config, opts ...blocks.BlockOption) *blocks.SourceBlock {
	timeout := cfg.PopTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	return blocks.NewSource[Message](func(ctx context.Context) ([]Message, error) {
		res, err := cfg.Client.BLPop(ctx, timeout, cfg.Key).Result()
		if err == redis.Nil {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("redisqueue: blpop %q: %w", cfg.Key, err)
		}
		// BLPop returns [key, value]; res[0] is always cfg.Key here.
		return []Message{{Payload: res[1]}}, nil
	}, opts...)
}

// NewSink builds a blocks.ProcessorBlock consuming Enqueue events and
// RPUSHing their payload onto cfg.Key.
func NewSink(cfg Config, opts ...blocks.BlockOption) *blocks.ProcessorBlock {
	return blocks.NewProcessor[Enqueue, Message](func(ctx context.Context, in Enqueue) ([]Message, error) {
		if err := cfg.Client.RPush(ctx, cfg.Key, in.Payload).Err(); err != nil {
			return nil, fmt.Errorf("redisqueue: rpush %q: %w", cfg.Key, err)
		}
		return nil, nil
	}, opts...)
}
