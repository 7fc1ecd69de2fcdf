package domain

import "time"

// SignupStatus is the ledger state of one (activity, user) pair.
type SignupStatus string

const (
	SignupStatusJoined   SignupStatus = "JOINED"
	SignupStatusCanceled SignupStatus = "CANCELED"
)

// Signup is the single ledger row per (ActivityID, UserID). Rows are never deleted.
type Signup struct {
	ID         string
	ActivityID string
	UserID     string
	Status     SignupStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SignupState is the read-side view of an activity's signups.
type SignupState struct {
	JoinedCount int
	IsJoined    bool
}
