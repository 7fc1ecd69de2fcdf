package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Maqingtian/campus-hub/internal/domain"
)

const activityColumns = `a.activity_id, a.activity_type, a.title, a.description, a.location, a.start_time, a.end_time, a.capacity, a.creator_id, a.is_hidden, a.created_at, a.updated_at`

// CreateActivity inserts a new activity row.
func (r *Repository) CreateActivity(ctx context.Context, activity domain.Activity) error {
	const stmt = `INSERT INTO activities (activity_id, activity_type, title, description, location, start_time, end_time, capacity, creator_id, is_hidden, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err := r.pool.Exec(ctx, stmt,
		activity.ID,
		activity.Type,
		activity.Title,
		activity.Description,
		activity.Location,
		activity.StartTime,
		activity.EndTime,
		activity.Capacity,
		activity.CreatorID,
		activity.Hidden,
		activity.CreatedAt,
		activity.UpdatedAt,
	)
	return storageErr(err)
}

// FindActivityByID returns the activity or (nil, nil) when absent.
func (r *Repository) FindActivityByID(ctx context.Context, id string) (*domain.Activity, error) {
	return findActivity(ctx, r.pool, id, false)
}

// ListActivities returns activities ordered by start time with their JOINED counts.
func (r *Repository) ListActivities(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, error) {
	query := `SELECT ` + activityColumns + `, COALESCE(s.joined, 0)
        FROM activities a
        LEFT JOIN (
            SELECT activity_id, COUNT(*) AS joined
              FROM activity_signups
             WHERE status = 'JOINED'
             GROUP BY activity_id
        ) s ON s.activity_id = a.activity_id
        WHERE ($1 = '' OR a.activity_type = $1)
          AND ($2 OR NOT a.is_hidden)
        ORDER BY a.start_time ASC, a.activity_id ASC`

	rows, err := r.pool.Query(ctx, query, string(filter.Type), filter.IncludeHidden)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	results := make([]domain.Activity, 0)
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(activityDest(&activity, &activity.JoinedCount)...); err != nil {
			return nil, err
		}
		results = append(results, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return results, nil
}

// SetActivityHidden updates the moderation flag and returns the updated row, or nil when absent.
func (r *Repository) SetActivityHidden(ctx context.Context, id string, hidden bool, at time.Time) (*domain.Activity, error) {
	query := `UPDATE activities a SET is_hidden = $2, updated_at = $3 WHERE a.activity_id = $1 RETURNING ` + activityColumns

	var activity domain.Activity
	if err := r.pool.QueryRow(ctx, query, id, hidden, at).Scan(activityDest(&activity)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr(err)
	}
	return &activity, nil
}

// ListActivitiesNewest returns up to limit activities, hidden included, newest
// first, with JOINED and CANCELED ledger counts.
func (r *Repository) ListActivitiesNewest(ctx context.Context, limit int) ([]domain.ActivityOverview, error) {
	query := `SELECT ` + activityColumns + `, COALESCE(s.joined, 0), COALESCE(s.canceled, 0)
        FROM activities a
        LEFT JOIN (
            SELECT activity_id,
                   COUNT(*) FILTER (WHERE status = 'JOINED') AS joined,
                   COUNT(*) FILTER (WHERE status = 'CANCELED') AS canceled
              FROM activity_signups
             GROUP BY activity_id
        ) s ON s.activity_id = a.activity_id
        ORDER BY a.created_at DESC, a.activity_id DESC
        LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	results := make([]domain.ActivityOverview, 0)
	for rows.Next() {
		var item domain.ActivityOverview
		if err := rows.Scan(activityDest(&item.Activity, &item.JoinedCount, &item.CanceledCount)...); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return results, nil
}

// CountStats returns visible activities, ledger rows and notifications.
func (r *Repository) CountStats(ctx context.Context) (domain.HubStats, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM activities WHERE NOT is_hidden),
        (SELECT COUNT(*) FROM activity_signups),
        (SELECT COUNT(*) FROM notifications)`

	var stats domain.HubStats
	if err := r.pool.QueryRow(ctx, query).Scan(&stats.Activities, &stats.Signups, &stats.Notifications); err != nil {
		return domain.HubStats{}, storageErr(err)
	}
	return stats, nil
}

func findActivity(ctx context.Context, q querier, id string, lock bool) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities a WHERE a.activity_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	var activity domain.Activity
	if err := q.QueryRow(ctx, query, id).Scan(activityDest(&activity)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr(err)
	}
	return &activity, nil
}

func activityDest(a *domain.Activity, extra ...any) []any {
	dest := []any{
		&a.ID,
		&a.Type,
		&a.Title,
		&a.Description,
		&a.Location,
		&a.StartTime,
		&a.EndTime,
		&a.Capacity,
		&a.CreatorID,
		&a.Hidden,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
	return append(dest, extra...)
}
