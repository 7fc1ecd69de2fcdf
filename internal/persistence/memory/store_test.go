package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Maqingtian/campus-hub/internal/domain"
)

func TestWithinTxDiscardsStagedWritesOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.CreateActivity(ctx, domain.Activity{ID: "act-1", Title: "Chess"}))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context, ledger domain.SignupLedger) error {
		_, err := ledger.UpsertSignup(ctx, domain.Signup{ID: "s-1", ActivityID: "act-1", UserID: "u-1", Status: domain.SignupStatusJoined})
		require.NoError(t, err)

		joined, err := ledger.CountJoined(ctx, "act-1")
		require.NoError(t, err)
		require.Equal(t, 1, joined, "staged row must be visible inside the unit of work")
		return boom
	})
	require.ErrorIs(t, err, boom)

	joined, err := store.CountJoined(ctx, "act-1")
	require.NoError(t, err)
	require.Zero(t, joined)
	require.Empty(t, store.Signups("act-1"))
}

func TestUpsertKeepsOneRowPerPair(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	created := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

	first, err := store.UpsertSignup(ctx, domain.Signup{
		ID: "s-1", ActivityID: "act-1", UserID: "u-1",
		Status: domain.SignupStatusJoined, CreatedAt: created, UpdatedAt: created,
	})
	require.NoError(t, err)

	second, err := store.UpsertSignup(ctx, domain.Signup{
		ID: "s-2", ActivityID: "act-1", UserID: "u-1",
		Status: domain.SignupStatusCanceled, CreatedAt: created.Add(time.Hour), UpdatedAt: created.Add(time.Hour),
	})
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, created, second.CreatedAt)
	require.Equal(t, domain.SignupStatusCanceled, second.Status)
	require.Len(t, store.Signups("act-1"), 1)
}

func TestListActivitiesOrdersByStartAndCountsJoined(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateActivity(ctx, domain.Activity{ID: "late", Type: domain.ActivityTypeClub, StartTime: base.Add(2 * time.Hour)}))
	require.NoError(t, store.CreateActivity(ctx, domain.Activity{ID: "early", Type: domain.ActivityTypeSports, StartTime: base}))
	require.NoError(t, store.CreateActivity(ctx, domain.Activity{ID: "hidden", Type: domain.ActivityTypeSports, StartTime: base, Hidden: true}))

	_, err := store.UpsertSignup(ctx, domain.Signup{ID: "s-1", ActivityID: "early", UserID: "u-1", Status: domain.SignupStatusJoined})
	require.NoError(t, err)
	_, err = store.UpsertSignup(ctx, domain.Signup{ID: "s-2", ActivityID: "early", UserID: "u-2", Status: domain.SignupStatusCanceled})
	require.NoError(t, err)

	items, err := store.ListActivities(ctx, domain.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "early", items[0].ID)
	require.Equal(t, 1, items[0].JoinedCount)
	require.Equal(t, "late", items[1].ID)

	sports, err := store.ListActivities(ctx, domain.ActivityFilter{Type: domain.ActivityTypeSports, IncludeHidden: true})
	require.NoError(t, err)
	require.Len(t, sports, 2)
}

func TestListActivitiesNewestAndStats(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateActivity(ctx, domain.Activity{ID: "old", CreatedAt: base}))
	require.NoError(t, store.CreateActivity(ctx, domain.Activity{ID: "hidden", CreatedAt: base.Add(time.Hour), Hidden: true}))
	require.NoError(t, store.CreateActivity(ctx, domain.Activity{ID: "new", CreatedAt: base.Add(2 * time.Hour)}))

	for i, status := range []domain.SignupStatus{domain.SignupStatusJoined, domain.SignupStatusJoined, domain.SignupStatusCanceled} {
		_, err := store.UpsertSignup(ctx, domain.Signup{ID: fmt.Sprintf("s-%d", i), ActivityID: "hidden", UserID: fmt.Sprintf("u-%d", i), Status: status})
		require.NoError(t, err)
	}
	_, err := store.CreateNotification(ctx, domain.Notification{ID: "n-1", UserID: "u-0", CreatedAt: base})
	require.NoError(t, err)

	items, err := store.ListActivitiesNewest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "new", items[0].ID)
	require.Equal(t, "hidden", items[1].ID)
	require.Equal(t, 2, items[1].JoinedCount)
	require.Equal(t, 1, items[1].CanceledCount)

	stats, err := store.CountStats(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.HubStats{Activities: 2, Signups: 3, Notifications: 1}, stats)
}

func TestNotificationsDedupeAndPaginate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2025, time.May, 5, 8, 0, 0, 0, time.UTC)

	for i, id := range []string{"n-1", "n-2", "n-3"} {
		_, err := store.CreateNotification(ctx, domain.Notification{
			ID: id, UserID: "u-1", Type: domain.NotificationSignupConfirmed,
			Title: "Joined", DedupeKey: id, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	dup, err := store.CreateNotification(ctx, domain.Notification{ID: "n-9", UserID: "u-1", DedupeKey: "n-2", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	require.Equal(t, "n-2", dup.ID)

	page, next, err := store.ListNotifications(ctx, "u-1", nil, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"n-3", "n-2"}, notificationIDs(page))
	require.NotNil(t, next)

	page, next, err = store.ListNotifications(ctx, "u-1", next, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"n-1"}, notificationIDs(page))
	require.Nil(t, next)

	updated, err := store.MarkRead(ctx, "u-2", "n-1", base)
	require.NoError(t, err)
	require.Zero(t, updated, "other users cannot mark someone else's notification")

	updated, err = store.MarkAllRead(ctx, "u-1", base)
	require.NoError(t, err)
	require.Equal(t, 3, updated)

	unread, err := store.CountUnread(ctx, "u-1")
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestUnavailableStoreFails(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	store.SetUnavailable(true)

	err := store.WithinTx(ctx, func(context.Context, domain.SignupLedger) error { return nil })
	require.ErrorIs(t, err, domain.ErrUnavailable)

	_, err = store.CountJoined(ctx, "act-1")
	require.ErrorIs(t, err, domain.ErrUnavailable)
}

func notificationIDs(items []domain.Notification) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
