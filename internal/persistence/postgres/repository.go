// Package postgres implements the campus-hub storage contracts on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Maqingtian/campus-hub/internal/domain"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides Postgres-backed persistence for activities, signups and notifications.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return domain.ErrUnavailable
	}
	return storageErr(r.pool.Ping(ctx))
}

// WithinTx runs fn inside a READ COMMITTED transaction. The ledger handed to fn
// takes row locks on the activity and signup it reads.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, ledger domain.SignupLedger) error) (err error) {
	if r == nil || r.pool == nil {
		return domain.ErrUnavailable
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(ctx, &txLedger{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return storageErr(err)
	}
	return nil
}

// storageErr folds connectivity failures into domain.ErrUnavailable and
// leaves everything else untouched.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
