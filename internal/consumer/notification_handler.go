package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Maqingtian/campus-hub/internal/domain"
	"github.com/Maqingtian/campus-hub/internal/platform/events"
)

// NotificationCreator is the slice of domain.NotificationService the handler needs.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, input domain.CreateNotificationInput) (*domain.Notification, error)
}

// ActivityLookup resolves activity titles for notification copy.
type ActivityLookup interface {
	FindActivityByID(ctx context.Context, id string) (*domain.Activity, error)
}

// NotificationHandler turns signup and moderation events into user notifications.
// Redelivered events map to the same dedupe key and create nothing new.
type NotificationHandler struct {
	notifications NotificationCreator
	activities    ActivityLookup
}

// NewNotificationHandler constructs a handler. activities may be nil, in which
// case notification copy falls back to a generic activity label.
func NewNotificationHandler(notifications NotificationCreator, activities ActivityLookup) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, activities: activities}
}

// Handle implements Handler.
func (h *NotificationHandler) Handle(ctx context.Context, msg Message) error {
	switch msg.EventType {
	case events.TypeSignupJoined, events.TypeSignupCanceled:
		var payload events.SignupChanged
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", msg.EventType, err)
		}
		return h.signupChanged(ctx, msg.EventType, payload)
	case events.TypeActivityVisibilityChanged:
		var payload events.ActivityVisibilityChanged
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", msg.EventType, err)
		}
		return h.visibilityChanged(ctx, payload)
	default:
		return nil
	}
}

func (h *NotificationHandler) signupChanged(ctx context.Context, eventType string, payload events.SignupChanged) error {
	title := h.activityTitle(ctx, payload.ActivityID, "")

	input := domain.CreateNotificationInput{
		UserID:    payload.UserID,
		Link:      activityLink(payload.ActivityID),
		DedupeKey: dedupeKey(eventType, payload.SignupID, payload.OccurredAt),
	}
	if eventType == events.TypeSignupJoined {
		input.Type = domain.NotificationSignupConfirmed
		input.Title = "Signup confirmed"
		input.Body = fmt.Sprintf("You joined %q.", title)
	} else {
		input.Type = domain.NotificationSignupCanceled
		input.Title = "Signup canceled"
		input.Body = fmt.Sprintf("You left %q.", title)
	}
	return h.create(ctx, input)
}

func (h *NotificationHandler) visibilityChanged(ctx context.Context, payload events.ActivityVisibilityChanged) error {
	if !payload.Hidden || payload.CreatorID == "" {
		return nil
	}
	title := h.activityTitle(ctx, payload.ActivityID, payload.Title)
	return h.create(ctx, domain.CreateNotificationInput{
		UserID:    payload.CreatorID,
		Type:      domain.NotificationActivityHidden,
		Title:     "Activity hidden",
		Body:      fmt.Sprintf("%q was hidden by a moderator.", title),
		Link:      activityLink(payload.ActivityID),
		DedupeKey: dedupeKey("activity.hidden", payload.ActivityID, payload.OccurredAt),
	})
}

func (h *NotificationHandler) create(ctx context.Context, input domain.CreateNotificationInput) error {
	if _, err := h.notifications.CreateNotification(ctx, input); err != nil {
		return err
	}
	recordNotification(string(input.Type))
	return nil
}

func (h *NotificationHandler) activityTitle(ctx context.Context, activityID, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if h.activities != nil {
		activity, err := h.activities.FindActivityByID(ctx, activityID)
		if err == nil && activity != nil && activity.Title != "" {
			return activity.Title
		}
	}
	return "the activity"
}

func activityLink(activityID string) string {
	return "/activities/" + activityID
}

func dedupeKey(kind, id string, at time.Time) string {
	return fmt.Sprintf("%s:%s:%d", kind, id, at.UnixNano())
}
