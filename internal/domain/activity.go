package domain

import (
	"strings"
	"time"
)

// ActivityType classifies campus activities.
type ActivityType string

const (
	ActivityTypeSports    ActivityType = "SPORTS"
	ActivityTypeClub      ActivityType = "CLUB"
	ActivityTypeLecture   ActivityType = "LECTURE"
	ActivityTypeVolunteer ActivityType = "VOLUNTEER"
	ActivityTypeSocial    ActivityType = "SOCIAL"
	ActivityTypeOther     ActivityType = "OTHER"
)

// ActivityTypes lists every accepted ActivityType.
var ActivityTypes = []ActivityType{
	ActivityTypeSports,
	ActivityTypeClub,
	ActivityTypeLecture,
	ActivityTypeVolunteer,
	ActivityTypeSocial,
	ActivityTypeOther,
}

// ParseActivityType normalises raw input; ok is false for unknown types.
func ParseActivityType(raw string) (ActivityType, bool) {
	candidate := ActivityType(strings.ToUpper(strings.TrimSpace(raw)))
	for _, t := range ActivityTypes {
		if t == candidate {
			return t, true
		}
	}
	return "", false
}

// Activity is an event users can sign up for. Capacity nil means unlimited.
type Activity struct {
	ID          string
	Type        ActivityType
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     *time.Time
	Capacity    *int
	CreatorID   string
	Hidden      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// JoinedCount is populated by list reads only.
	JoinedCount int
}

// ActivityOverview is one row of the moderation listing: the activity with
// JoinedCount set plus the number of canceled ledger rows.
type ActivityOverview struct {
	Activity
	CanceledCount int
}

// HubStats are the moderation dashboard counters. Activities counts visible
// activities only; Signups counts ledger rows in any status.
type HubStats struct {
	Activities    int
	Signups       int
	Notifications int
}

// HasCapacityFor reports whether one more JOINED signup fits given the current count.
func (a Activity) HasCapacityFor(joined int) bool {
	if a.Capacity == nil {
		return true
	}
	return joined < *a.Capacity
}

// VisibleTo reports whether the viewer may see the activity.
func (a Activity) VisibleTo(viewer Viewer) bool {
	return !a.Hidden || viewer.Admin
}

// ActivityFilter narrows list queries. Hidden activities are excluded unless IncludeHidden is set.
type ActivityFilter struct {
	Type          ActivityType
	IncludeHidden bool
}

// Viewer identifies who is reading; a zero Viewer is an anonymous visitor.
type Viewer struct {
	UserID string
	Admin  bool
}

// Matches applies the filter as an in-process predicate.
func (f ActivityFilter) Matches(a Activity) bool {
	if a.Hidden && !f.IncludeHidden {
		return false
	}
	return f.Type == "" || f.Type == a.Type
}
