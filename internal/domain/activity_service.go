package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Maqingtian/campus-hub/internal/observability"
)

const (
	defaultOverviewLimit = 20
	maxOverviewLimit     = 100
)

// ActivityService manages the activity catalogue and its moderation flag.
type ActivityService struct {
	store   ActivityStore
	signups *SignupService
	clock   func() time.Time
	newID   func() string
}

// NewActivityService constructs an ActivityService. signups supplies the
// per-viewer signup state returned by GetActivity.
func NewActivityService(store ActivityStore, signups *SignupService, opts ...ServiceOption) *ActivityService {
	deps := buildDeps(opts)
	return &ActivityService{store: store, signups: signups, clock: deps.clock, newID: deps.newID}
}

// CreateActivityInput captures the payload from the API layer.
type CreateActivityInput struct {
	Type        ActivityType
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     *time.Time
	Capacity    *int
	CreatorID   string
}

// Validate ensures input correctness.
func (in CreateActivityInput) Validate() error {
	if _, ok := ParseActivityType(string(in.Type)); !ok {
		return fmt.Errorf("%w: unknown activity type %q", ErrInvalidInput, in.Type)
	}
	if len([]rune(strings.TrimSpace(in.Title))) < 3 {
		return fmt.Errorf("%w: title is too short", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if in.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidInput)
	}
	if in.EndTime != nil && in.EndTime.Before(in.StartTime) {
		return fmt.Errorf("%w: end time is before start time", ErrInvalidInput)
	}
	if in.Capacity != nil && *in.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidInput)
	}
	return nil
}

// CreateActivity persists a new visible activity.
func (s *ActivityService) CreateActivity(ctx context.Context, input CreateActivityInput) (*Activity, error) {
	if s == nil || s.store == nil {
		return nil, ErrUnavailable
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	activityType, _ := ParseActivityType(string(input.Type))
	now := s.clock().UTC()
	activity := Activity{
		ID:          s.newID(),
		Type:        activityType,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		StartTime:   input.StartTime.UTC(),
		Capacity:    input.Capacity,
		CreatorID:   strings.TrimSpace(input.CreatorID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.EndTime != nil {
		end := input.EndTime.UTC()
		activity.EndTime = &end
	}

	if err := s.store.CreateActivity(ctx, activity); err != nil {
		return nil, err
	}
	observability.RecordActivityPersisted(activity.CreatedAt)
	return &activity, nil
}

// ListActivities returns activities ordered by start time with their JOINED counts.
func (s *ActivityService) ListActivities(ctx context.Context, filter ActivityFilter) ([]Activity, error) {
	if s == nil || s.store == nil {
		return nil, ErrUnavailable
	}
	return s.store.ListActivities(ctx, filter)
}

// GetActivity fetches an activity together with the viewer's signup state.
// Hidden activities are reported as not found to non-admin viewers.
func (s *ActivityService) GetActivity(ctx context.Context, id string, viewer Viewer) (*Activity, SignupState, error) {
	if s == nil || s.store == nil {
		return nil, SignupState{}, ErrUnavailable
	}
	activity, err := s.store.FindActivityByID(ctx, id)
	if err != nil {
		return nil, SignupState{}, err
	}
	if activity == nil || !activity.VisibleTo(viewer) {
		return nil, SignupState{}, ErrActivityNotFound
	}

	state, err := s.signups.ReadState(ctx, id, viewer.UserID)
	if err != nil {
		return nil, SignupState{}, err
	}
	activity.JoinedCount = state.JoinedCount
	return activity, state, nil
}

// SetActivityHidden toggles the soft-moderation flag. Only admins may call it.
func (s *ActivityService) SetActivityHidden(ctx context.Context, id string, hidden bool, viewer Viewer) (*Activity, error) {
	if s == nil || s.store == nil {
		return nil, ErrUnavailable
	}
	if !viewer.Admin {
		return nil, ErrForbidden
	}
	activity, err := s.store.SetActivityHidden(ctx, id, hidden, s.clock().UTC())
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	observability.RecordActivityPersisted(activity.UpdatedAt)
	return activity, nil
}

// ListActivitiesAdmin returns the newest activities, hidden ones included, with
// their per-status signup counts. limit <= 0 uses 20 and is capped at 100.
func (s *ActivityService) ListActivitiesAdmin(ctx context.Context, limit int, viewer Viewer) ([]ActivityOverview, error) {
	if s == nil || s.store == nil {
		return nil, ErrUnavailable
	}
	if !viewer.Admin {
		return nil, ErrForbidden
	}
	switch {
	case limit <= 0:
		limit = defaultOverviewLimit
	case limit > maxOverviewLimit:
		limit = maxOverviewLimit
	}
	return s.store.ListActivitiesNewest(ctx, limit)
}

// Stats reports the moderation dashboard counters.
func (s *ActivityService) Stats(ctx context.Context, viewer Viewer) (HubStats, error) {
	if s == nil || s.store == nil {
		return HubStats{}, ErrUnavailable
	}
	if !viewer.Admin {
		return HubStats{}, ErrForbidden
	}
	return s.store.CountStats(ctx)
}
