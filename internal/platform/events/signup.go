package events

import "time"

// SignupChanged is emitted after a join or cancel commits. The same payload
// serves both signup.joined and signup.canceled; Status disambiguates.
type SignupChanged struct {
	SignupID   string    `json:"signup_id"`
	ActivityID string    `json:"activity_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
