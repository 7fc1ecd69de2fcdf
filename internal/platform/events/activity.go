// Package events defines shared cross-process event payloads.
package events

import "time"

// Event type identifiers carried in the outbox and on Kafka headers.
const (
	TypeActivityCreated           = "activity.created"
	TypeActivityVisibilityChanged = "activity.visibility_changed"
	TypeSignupJoined              = "signup.joined"
	TypeSignupCanceled            = "signup.canceled"
)

// ActivityCreated represents the message emitted when a new activity is published.
type ActivityCreated struct {
	ActivityID   string     `json:"activity_id"`
	ActivityType string     `json:"activity_type"`
	Title        string     `json:"title"`
	CreatorID    string     `json:"creator_id,omitempty"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Capacity     *int       `json:"capacity,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ActivityVisibilityChanged tracks moderation of an activity.
type ActivityVisibilityChanged struct {
	ActivityID string    `json:"activity_id"`
	Title      string    `json:"title"`
	CreatorID  string    `json:"creator_id,omitempty"`
	Hidden     bool      `json:"hidden"`
	OccurredAt time.Time `json:"occurred_at"`
}
