package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Maqingtian/campus-hub/internal/domain"
)

const signupColumns = `signup_id, activity_id, user_id, status, created_at, updated_at`

// FindSignup returns the ledger row for the pair or (nil, nil).
func (r *Repository) FindSignup(ctx context.Context, activityID, userID string) (*domain.Signup, error) {
	return findSignup(ctx, r.pool, activityID, userID, false)
}

// CountJoined counts JOINED rows for the activity.
func (r *Repository) CountJoined(ctx context.Context, activityID string) (int, error) {
	return countJoined(ctx, r.pool, activityID)
}

// UpsertSignup writes the ledger row outside of a unit of work.
func (r *Repository) UpsertSignup(ctx context.Context, signup domain.Signup) (*domain.Signup, error) {
	return upsertSignup(ctx, r.pool, signup)
}

type txLedger struct {
	tx pgx.Tx
}

func (l *txLedger) FindActivityByID(ctx context.Context, id string) (*domain.Activity, error) {
	return findActivity(ctx, l.tx, id, true)
}

func (l *txLedger) FindSignup(ctx context.Context, activityID, userID string) (*domain.Signup, error) {
	return findSignup(ctx, l.tx, activityID, userID, true)
}

func (l *txLedger) CountJoined(ctx context.Context, activityID string) (int, error) {
	return countJoined(ctx, l.tx, activityID)
}

func (l *txLedger) UpsertSignup(ctx context.Context, signup domain.Signup) (*domain.Signup, error) {
	return upsertSignup(ctx, l.tx, signup)
}

func findSignup(ctx context.Context, q querier, activityID, userID string, lock bool) (*domain.Signup, error) {
	query := `SELECT ` + signupColumns + ` FROM activity_signups WHERE activity_id = $1 AND user_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}

	var signup domain.Signup
	err := q.QueryRow(ctx, query, activityID, userID).
		Scan(&signup.ID, &signup.ActivityID, &signup.UserID, &signup.Status, &signup.CreatedAt, &signup.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr(err)
	}
	return &signup, nil
}

func countJoined(ctx context.Context, q querier, activityID string) (int, error) {
	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM activity_signups WHERE activity_id = $1 AND status = 'JOINED'`, activityID).Scan(&count)
	if err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}

// upsertSignup keeps the original signup_id and created_at when the pair already exists.
func upsertSignup(ctx context.Context, q querier, signup domain.Signup) (*domain.Signup, error) {
	const stmt = `INSERT INTO activity_signups (signup_id, activity_id, user_id, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (activity_id, user_id)
        DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
        RETURNING ` + signupColumns

	var stored domain.Signup
	err := q.QueryRow(ctx, stmt,
		signup.ID,
		signup.ActivityID,
		signup.UserID,
		signup.Status,
		signup.CreatedAt,
		signup.UpdatedAt,
	).Scan(&stored.ID, &stored.ActivityID, &stored.UserID, &stored.Status, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, storageErr(err)
	}
	return &stored, nil
}
