package consumer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AuditHandler writes every consumed event into event_log. Replays of the
// same topic/partition/offset are ignored.
type AuditHandler struct {
	db execer
}

// NewAuditHandler constructs a handler backed by db, usually a *pgxpool.Pool.
func NewAuditHandler(db execer) *AuditHandler {
	return &AuditHandler{db: db}
}

// Handle stores the event payload in the event_log table.
func (h *AuditHandler) Handle(ctx context.Context, msg Message) error {
	_, err := h.db.Exec(ctx,
		`INSERT INTO event_log (event_type, aggregate_id, schema_id, schema_subject, topic, partition, record_offset, payload, received_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
         ON CONFLICT (topic, partition, record_offset) DO NOTHING`,
		msg.EventType,
		msg.AggregateID,
		msg.SchemaID,
		msg.SchemaSubject,
		msg.Topic,
		msg.Partition,
		msg.Offset,
		msg.Payload,
		msg.Timestamp,
	)
	return err
}

// Chain runs every handler in order and joins their errors.
func Chain(handlers ...Handler) Handler {
	return chain(handlers)
}

type chain []Handler

func (c chain) Handle(ctx context.Context, msg Message) error {
	var err error
	for _, h := range c {
		err = errors.Join(err, h.Handle(ctx, msg))
	}
	return err
}
