//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/Maqingtian/campus-hub/internal/domain"
)

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, ctx)

	const capacity = 3
	activity := seedActivity(t, ctx, repo, intPtr(capacity))
	svc := domain.NewSignupService(repo)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, full int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Join(ctx, activity.ID, fmt.Sprintf("user-%d", i))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrCapacityExceeded):
				full++
			default:
				t.Errorf("unexpected join error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, capacity, ok)
	require.Equal(t, 20-capacity, full)

	joined, err := repo.CountJoined(ctx, activity.ID)
	require.NoError(t, err)
	require.Equal(t, capacity, joined)
}

func TestSignupLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, ctx)
	activity := seedActivity(t, ctx, repo, intPtr(2))
	svc := domain.NewSignupService(repo)

	first, err := svc.Join(ctx, activity.ID, "user-a")
	require.NoError(t, err)
	_, err = svc.Join(ctx, activity.ID, "user-b")
	require.NoError(t, err)

	_, err = svc.Join(ctx, activity.ID, "user-c")
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)
	_, err = svc.Join(ctx, activity.ID, "user-a")
	require.ErrorIs(t, err, domain.ErrAlreadyJoined)

	_, err = svc.Cancel(ctx, activity.ID, "user-a")
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, activity.ID, "user-a")
	require.NoError(t, err)

	_, err = svc.Join(ctx, activity.ID, "user-c")
	require.NoError(t, err)

	rejoined, err := svc.Join(ctx, activity.ID, "user-z")
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)
	require.Nil(t, rejoined)

	state, err := svc.ReadState(ctx, activity.ID, "user-a")
	require.NoError(t, err)
	require.Equal(t, 2, state.JoinedCount)
	require.False(t, state.IsJoined)

	row, err := repo.FindSignup(ctx, activity.ID, "user-a")
	require.NoError(t, err)
	require.Equal(t, first.ID, row.ID)
	require.Equal(t, domain.SignupStatusCanceled, row.Status)

	_, err = svc.Cancel(ctx, activity.ID, "never-joined")
	require.ErrorIs(t, err, domain.ErrSignupNotFound)

	listed, err := repo.ListActivities(ctx, domain.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, 2, listed[0].JoinedCount)
}

func TestHiddenActivityFiltering(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, ctx)
	activity := seedActivity(t, ctx, repo, nil)

	updated, err := repo.SetActivityHidden(ctx, activity.ID, true, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, updated.Hidden)

	visible, err := repo.ListActivities(ctx, domain.ActivityFilter{})
	require.NoError(t, err)
	require.Empty(t, visible)

	all, err := repo.ListActivities(ctx, domain.ActivityFilter{IncludeHidden: true, Type: domain.ActivityTypeSports})
	require.NoError(t, err)
	require.Len(t, all, 1)

	missing, err := repo.SetActivityHidden(ctx, uuid.NewString(), true, time.Now().UTC())
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestAdminOverviewQueries(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, ctx)
	older := seedActivity(t, ctx, repo, nil)
	newer := older
	newer.ID = uuid.NewString()
	newer.CreatedAt = older.CreatedAt.Add(time.Minute)
	require.NoError(t, repo.CreateActivity(ctx, newer))
	_, err := repo.SetActivityHidden(ctx, newer.ID, true, time.Now().UTC())
	require.NoError(t, err)

	now := time.Now().UTC()
	for i, status := range []domain.SignupStatus{domain.SignupStatusJoined, domain.SignupStatusCanceled} {
		_, err := repo.UpsertSignup(ctx, domain.Signup{
			ID: uuid.NewString(), ActivityID: older.ID, UserID: fmt.Sprintf("user-%d", i),
			Status: status, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
	}

	items, err := repo.ListActivitiesNewest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, newer.ID, items[0].ID)
	require.True(t, items[0].Hidden)
	require.Equal(t, older.ID, items[1].ID)
	require.Equal(t, 1, items[1].JoinedCount)
	require.Equal(t, 1, items[1].CanceledCount)

	stats, err := repo.CountStats(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.HubStats{Activities: 1, Signups: 2}, stats)
}

func TestNotificationInbox(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, ctx)
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 3; i++ {
		_, err := repo.CreateNotification(ctx, domain.Notification{
			ID:        uuid.NewString(),
			UserID:    "user-a",
			Type:      domain.NotificationSignupConfirmed,
			Title:     fmt.Sprintf("note %d", i),
			DedupeKey: fmt.Sprintf("key-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	dup, err := repo.CreateNotification(ctx, domain.Notification{
		ID: uuid.NewString(), UserID: "user-a", Type: domain.NotificationSignupConfirmed,
		Title: "dup", DedupeKey: "key-1", CreatedAt: base.Add(time.Minute),
	})
	require.NoError(t, err)
	require.Equal(t, "note 1", dup.Title)

	page, next, err := repo.ListNotifications(ctx, "user-a", nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "note 2", page[0].Title)
	require.NotNil(t, next)

	page, next, err = repo.ListNotifications(ctx, "user-a", next, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Nil(t, next)

	updated, err := repo.MarkRead(ctx, "user-a", page[0].ID, base)
	require.NoError(t, err)
	require.Equal(t, 1, updated)

	updated, err = repo.MarkAllRead(ctx, "user-a", base)
	require.NoError(t, err)
	require.Equal(t, 2, updated)

	unread, err := repo.CountUnread(ctx, "user-a")
	require.NoError(t, err)
	require.Zero(t, unread)
}

func setupRepository(t *testing.T, ctx context.Context) *Repository {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("campus_hub"),
		postgrescontainer.WithUsername("campus"),
		postgrescontainer.WithPassword("campus"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewRepository(pool)
}

func seedActivity(t *testing.T, ctx context.Context, repo *Repository, capacity *int) domain.Activity {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	activity := domain.Activity{
		ID:          uuid.NewString(),
		Type:        domain.ActivityTypeSports,
		Title:       "Basketball pickup",
		Description: "Friendly game",
		Location:    "Gym 2",
		StartTime:   now.Add(24 * time.Hour),
		Capacity:    capacity,
		CreatorID:   "creator-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.CreateActivity(ctx, activity))
	return activity
}

func intPtr(v int) *int { return &v }

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/postgres/migrations/0001_init.up.sql",
		"../../../db/postgres/migrations/0002_outbox.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		contents, readErr := os.ReadFile(resolvePath(t, rel))
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
