package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Maqingtian/campus-hub/internal/domain"
)

const notificationColumns = `notification_id, user_id, notification_type, title, body, link, COALESCE(dedupe_key, ''), is_read, created_at, read_at`

// CreateNotification inserts the notification, returning the existing row on a dedupe conflict.
func (r *Repository) CreateNotification(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	const stmt = `INSERT INTO notifications (notification_id, user_id, notification_type, title, body, link, dedupe_key, is_read, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,FALSE,$8)
        ON CONFLICT (user_id, dedupe_key) WHERE dedupe_key IS NOT NULL DO NOTHING
        RETURNING ` + notificationColumns

	var stored domain.Notification
	err := r.pool.QueryRow(ctx, stmt,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Body,
		n.Link,
		nullIfEmpty(n.DedupeKey),
		n.CreatedAt,
	).Scan(notificationDest(&stored)...)
	if err == nil {
		return &stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, storageErr(err)
	}

	const existing = `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 AND dedupe_key = $2`
	if err := r.pool.QueryRow(ctx, existing, n.UserID, n.DedupeKey).Scan(notificationDest(&stored)...); err != nil {
		return nil, storageErr(err)
	}
	return &stored, nil
}

// ListNotifications returns the user's notifications newest first.
func (r *Repository) ListNotifications(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.Notification, *domain.Cursor, error) {
	args := []any{userID, limit}
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`

	if cursor != nil {
		query += ` AND (created_at, notification_id) < ($3, $4)`
		args = append(args, cursor.At, cursor.ID)
	}
	query += ` ORDER BY created_at DESC, notification_id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, storageErr(err)
	}
	defer rows.Close()

	results := make([]domain.Notification, 0, limit)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(notificationDest(&n)...); err != nil {
			return nil, nil, err
		}
		results = append(results, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, storageErr(err)
	}

	var nextCursor *domain.Cursor
	if limit > 0 && len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{At: last.CreatedAt, ID: last.ID}
	}
	return results, nextCursor, nil
}

// CountUnread counts the user's unread notifications.
func (r *Repository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&count); err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}

// MarkRead flags one notification as read and reports how many rows matched.
func (r *Repository) MarkRead(ctx context.Context, userID, notificationID string, at time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, $3) WHERE user_id = $1 AND notification_id = $2`,
		userID, notificationID, at,
	)
	if err != nil {
		return 0, storageErr(err)
	}
	return int(tag.RowsAffected()), nil
}

// MarkAllRead flags every unread notification of the user.
func (r *Repository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = $2 WHERE user_id = $1 AND is_read = FALSE`,
		userID, at,
	)
	if err != nil {
		return 0, storageErr(err)
	}
	return int(tag.RowsAffected()), nil
}

func notificationDest(n *domain.Notification) []any {
	return []any{
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Body,
		&n.Link,
		&n.DedupeKey,
		&n.IsRead,
		&n.CreatedAt,
		&n.ReadAt,
	}
}
