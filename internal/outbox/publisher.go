package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Maqingtian/campus-hub/internal/domain"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Publisher records domain events in the outbox table. The dispatcher
// delivers them to Kafka asynchronously, so Publish never waits on the broker.
type Publisher struct {
	db execer
}

// NewPublisher constructs a Publisher. db is usually a *pgxpool.Pool.
func NewPublisher(db execer) *Publisher {
	return &Publisher{db: db}
}

// Publish implements domain.EventPublisher. Re-publishing the same event is a no-op.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	meta, ok := LookupEvent(event.Type)
	if !ok {
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	body, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.Type, err)
	}

	partitionKey := event.PartitionKey
	if partitionKey == "" {
		partitionKey = event.AggregateID
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (dedupe_key) DO NOTHING`

	_, err = p.db.Exec(ctx, stmt,
		event.AggregateType,
		event.AggregateID,
		event.Type,
		meta.Topic,
		meta.SchemaSubject,
		partitionKey,
		body,
		dedupeKey(event),
	)
	return err
}

func dedupeKey(event domain.Event) string {
	return fmt.Sprintf("%s:%s:%d", event.AggregateID, event.Type, event.OccurredAt.UnixNano())
}
