package domain

import (
	"context"
	"time"
)

// ActivityStore owns Activity rows. Lookups return (nil, nil) when the row is absent.
type ActivityStore interface {
	CreateActivity(ctx context.Context, activity Activity) error
	FindActivityByID(ctx context.Context, id string) (*Activity, error)
	ListActivities(ctx context.Context, filter ActivityFilter) ([]Activity, error)
	SetActivityHidden(ctx context.Context, id string, hidden bool, at time.Time) (*Activity, error)
	// ListActivitiesNewest returns up to limit activities, hidden included, newest first.
	ListActivitiesNewest(ctx context.Context, limit int) ([]ActivityOverview, error)
	CountStats(ctx context.Context) (HubStats, error)
}

// SignupLedger exposes the keyed reads and writes the signup workflow needs.
// Inside WithinTx, FindActivityByID and FindSignup lock the rows they return.
type SignupLedger interface {
	FindActivityByID(ctx context.Context, id string) (*Activity, error)
	FindSignup(ctx context.Context, activityID, userID string) (*Signup, error)
	CountJoined(ctx context.Context, activityID string) (int, error)
	UpsertSignup(ctx context.Context, signup Signup) (*Signup, error)
}

// SignupStore is a SignupLedger that can also run an atomic unit of work.
// fn's ledger is bound to the transaction; returning an error rolls everything back.
type SignupStore interface {
	SignupLedger
	WithinTx(ctx context.Context, fn func(ctx context.Context, ledger SignupLedger) error) error
}

// NotificationStore persists user notifications.
type NotificationStore interface {
	// CreateNotification inserts the row; when DedupeKey matches an existing row for
	// the same user, the existing row is returned instead.
	CreateNotification(ctx context.Context, notification Notification) (*Notification, error)
	ListNotifications(ctx context.Context, userID string, cursor *Cursor, limit int) ([]Notification, *Cursor, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string, at time.Time) (int, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error)
}

// Cursor models the pagination token for newest-first listings.
type Cursor struct {
	At time.Time
	ID string
}
