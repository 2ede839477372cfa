// Package pgoutbox wires a Postgres table as a transactional outbox sink,
// grounded on the example pack's foundation/integration/database/pg context
// helpers for carrying a pgx.Tx and issuing pgx queries.
package pgoutbox

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	blocks "github.com/severstal-digital/typed-blocks"
)

// Config names the outbox table a Record event is inserted into.
type Config struct {
	Pool  *pgxpool.Pool
	Table string
}

// Record is the event type a processor emits to persist one outbox row.
type Record struct {
	AggregateID string
	EventType   string
	Payload     []byte
}

// NewSink builds a blocks.ProcessorBlock that inserts each Record into
// cfg.Table within a single statement, relying on Postgres's own per-
// statement atomicity; wrap a multi-step pipeline's blocks in a single
// processor if a stronger transactional boundary is required.
func NewSink(cfg Config, opts ...blocks.BlockOption) *blocks.ProcessorBlock {
	query := fmt.Sprintf(
		`insert into %s (aggregate_id, event_type, payload) values ($1, $2, $3)`,
		cfg.Table,
	)
	return blocks.NewProcessor[Record, struct{}](func(ctx context.Context, in Record) ([]struct{}, error) {
		if _, err := cfg.Pool.Exec(ctx, query, in.AggregateID, in.EventType, in.Payload); err != nil {
			return nil, fmt.Errorf("pgoutbox: insert into %s: %w", cfg.Table, err)
		}
		return nil, nil
	}, opts...)
}
