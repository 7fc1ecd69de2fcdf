package domain

import (
	"context"
	"time"

	"github.com/Maqingtian/campus-hub/internal/platform/events"
)

// Event is a domain event emitted by the caller after a unit of work commits.
type Event struct {
	Type          string
	AggregateType string
	AggregateID   string
	PartitionKey  string
	Payload       any
	OccurredAt    time.Time
}

// EventPublisher hands events to the notification pipeline. Implementations must
// not block on downstream delivery; they only need to accept the event.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards events.
type NoopPublisher struct{}

// Publish performs no action.
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// SignupChangedEvent builds the signup.joined or signup.canceled event for a committed row.
func SignupChangedEvent(signup Signup) Event {
	eventType := events.TypeSignupJoined
	if signup.Status == SignupStatusCanceled {
		eventType = events.TypeSignupCanceled
	}
	return Event{
		Type:          eventType,
		AggregateType: "signup",
		AggregateID:   signup.ID,
		PartitionKey:  signup.ActivityID,
		OccurredAt:    signup.UpdatedAt,
		Payload: events.SignupChanged{
			SignupID:   signup.ID,
			ActivityID: signup.ActivityID,
			UserID:     signup.UserID,
			Status:     string(signup.Status),
			OccurredAt: signup.UpdatedAt,
		},
	}
}

// ActivityCreatedEvent builds the activity.created event.
func ActivityCreatedEvent(activity Activity) Event {
	return Event{
		Type:          events.TypeActivityCreated,
		AggregateType: "activity",
		AggregateID:   activity.ID,
		PartitionKey:  activity.ID,
		OccurredAt:    activity.CreatedAt,
		Payload: events.ActivityCreated{
			ActivityID:   activity.ID,
			ActivityType: string(activity.Type),
			Title:        activity.Title,
			CreatorID:    activity.CreatorID,
			StartTime:    activity.StartTime,
			EndTime:      activity.EndTime,
			Capacity:     activity.Capacity,
			CreatedAt:    activity.CreatedAt,
		},
	}
}

// ActivityVisibilityChangedEvent builds the activity.visibility_changed event.
func ActivityVisibilityChangedEvent(activity Activity) Event {
	return Event{
		Type:          events.TypeActivityVisibilityChanged,
		AggregateType: "activity",
		AggregateID:   activity.ID,
		PartitionKey:  activity.ID,
		OccurredAt:    activity.UpdatedAt,
		Payload: events.ActivityVisibilityChanged{
			ActivityID: activity.ID,
			Title:      activity.Title,
			CreatorID:  activity.CreatorID,
			Hidden:     activity.Hidden,
			OccurredAt: activity.UpdatedAt,
		},
	}
}
