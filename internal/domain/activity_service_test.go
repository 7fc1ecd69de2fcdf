package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Maqingtian/campus-hub/internal/domain"
	"github.com/Maqingtian/campus-hub/internal/persistence/memory"
)

func newActivityFixture() (*memory.Store, *domain.ActivityService, *domain.SignupService) {
	store := memory.NewStore()
	opts := []domain.ServiceOption{
		domain.WithClock(func() time.Time { return fixedNow }),
	}
	signups := domain.NewSignupService(store, opts...)
	return store, domain.NewActivityService(store, signups, opts...), signups
}

func validInput() domain.CreateActivityInput {
	return domain.CreateActivityInput{
		Type:        "sports",
		Title:       "  Five-a-side  ",
		Description: "Bring shoes",
		Location:    "North pitch",
		StartTime:   fixedNow.Add(48 * time.Hour),
		Capacity:    intPtr(10),
		CreatorID:   "creator-1",
	}
}

func TestCreateActivityNormalisesInput(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newActivityFixture()

	activity, err := svc.CreateActivity(ctx, validInput())
	require.NoError(t, err)
	require.NotEmpty(t, activity.ID)
	require.Equal(t, domain.ActivityTypeSports, activity.Type)
	require.Equal(t, "Five-a-side", activity.Title)
	require.False(t, activity.Hidden)
	require.Equal(t, fixedNow, activity.CreatedAt)

	items, err := svc.ListActivities(ctx, domain.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestCreateActivityValidation(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newActivityFixture()

	cases := map[string]func(*domain.CreateActivityInput){
		"unknown type":   func(in *domain.CreateActivityInput) { in.Type = "KARAOKE" },
		"short title":    func(in *domain.CreateActivityInput) { in.Title = "ab" },
		"no description": func(in *domain.CreateActivityInput) { in.Description = " " },
		"no start":       func(in *domain.CreateActivityInput) { in.StartTime = time.Time{} },
		"zero capacity":  func(in *domain.CreateActivityInput) { in.Capacity = intPtr(0) },
		"end before start": func(in *domain.CreateActivityInput) {
			end := in.StartTime.Add(-time.Hour)
			in.EndTime = &end
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.CreateActivity(ctx, in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestGetActivityReportsViewerState(t *testing.T) {
	ctx := context.Background()
	_, svc, signups := newActivityFixture()

	activity, err := svc.CreateActivity(ctx, validInput())
	require.NoError(t, err)
	_, err = signups.Join(ctx, activity.ID, "user-a")
	require.NoError(t, err)

	got, state, err := svc.GetActivity(ctx, activity.ID, domain.Viewer{UserID: "user-a"})
	require.NoError(t, err)
	require.Equal(t, 1, got.JoinedCount)
	require.True(t, state.IsJoined)

	_, state, err = svc.GetActivity(ctx, activity.ID, domain.Viewer{})
	require.NoError(t, err)
	require.Equal(t, 1, state.JoinedCount)
	require.False(t, state.IsJoined)

	_, _, err = svc.GetActivity(ctx, "missing", domain.Viewer{})
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
}

func TestAdminOverviewRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	_, svc, signups := newActivityFixture()
	admin := domain.Viewer{UserID: "admin", Admin: true}

	activity, err := svc.CreateActivity(ctx, validInput())
	require.NoError(t, err)
	_, err = signups.Join(ctx, activity.ID, "user-a")
	require.NoError(t, err)
	_, err = signups.Join(ctx, activity.ID, "user-b")
	require.NoError(t, err)
	_, err = signups.Cancel(ctx, activity.ID, "user-b")
	require.NoError(t, err)
	_, err = svc.SetActivityHidden(ctx, activity.ID, true, admin)
	require.NoError(t, err)

	_, err = svc.ListActivitiesAdmin(ctx, 0, domain.Viewer{UserID: "user-a"})
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Stats(ctx, domain.Viewer{UserID: "user-a"})
	require.ErrorIs(t, err, domain.ErrForbidden)

	items, err := svc.ListActivitiesAdmin(ctx, 0, admin)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].Hidden)
	require.Equal(t, 1, items[0].JoinedCount)
	require.Equal(t, 1, items[0].CanceledCount)

	stats, err := svc.Stats(ctx, admin)
	require.NoError(t, err)
	require.Equal(t, domain.HubStats{Activities: 0, Signups: 2}, stats)
}

func TestAdminOverviewLimit(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newActivityFixture()
	admin := domain.Viewer{UserID: "admin", Admin: true}
	for i := 0; i < 25; i++ {
		_, err := svc.CreateActivity(ctx, validInput())
		require.NoError(t, err)
	}

	items, err := svc.ListActivitiesAdmin(ctx, 0, admin)
	require.NoError(t, err)
	require.Len(t, items, 20, "default page size")

	items, err = svc.ListActivitiesAdmin(ctx, 5, admin)
	require.NoError(t, err)
	require.Len(t, items, 5)
}

func TestHiddenActivitiesAreAdminOnly(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newActivityFixture()

	activity, err := svc.CreateActivity(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.SetActivityHidden(ctx, activity.ID, true, domain.Viewer{UserID: "user-a"})
	require.ErrorIs(t, err, domain.ErrForbidden)

	hidden, err := svc.SetActivityHidden(ctx, activity.ID, true, domain.Viewer{UserID: "admin", Admin: true})
	require.NoError(t, err)
	require.True(t, hidden.Hidden)

	_, _, err = svc.GetActivity(ctx, activity.ID, domain.Viewer{UserID: "user-a"})
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
	_, _, err = svc.GetActivity(ctx, activity.ID, domain.Viewer{UserID: "admin", Admin: true})
	require.NoError(t, err)

	visible, err := svc.ListActivities(ctx, domain.ActivityFilter{})
	require.NoError(t, err)
	require.Empty(t, visible)

	all, err := svc.ListActivities(ctx, domain.ActivityFilter{IncludeHidden: true})
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = svc.SetActivityHidden(ctx, "missing", true, domain.Viewer{Admin: true})
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
}
