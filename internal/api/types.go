package api

import (
	"time"

	"github.com/Maqingtian/campus-hub/internal/domain"
	"github.com/Maqingtian/campus-hub/internal/persistence"
)

// CreateActivityRequest is the body of POST /api/activities.
type CreateActivityRequest struct {
	Type        string     `json:"type" validate:"required"`
	Title       string     `json:"title" validate:"required,notblank,min=3,max=200"`
	Description string     `json:"description" validate:"required,notblank"`
	Location    string     `json:"location" validate:"omitempty,max=200"`
	StartTime   time.Time  `json:"startTime" validate:"required"`
	EndTime     *time.Time `json:"endTime"`
	Capacity    *int       `json:"capacity" validate:"omitempty,min=1"`
}

// SetHiddenRequest is the body of POST /api/admin/activities/{id}/hide.
type SetHiddenRequest struct {
	Hidden *bool `json:"hidden" validate:"required"`
}

// ActivityView is the JSON projection of an activity.
type ActivityView struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Capacity    *int       `json:"capacity"`
	CreatorID   string     `json:"creatorId,omitempty"`
	IsHidden    bool       `json:"isHidden"`
	JoinedCount int        `json:"joinedCount"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ActivityDetailView adds the caller's signup state to ActivityView.
type ActivityDetailView struct {
	ActivityView
	IsJoined bool `json:"isJoined"`
}

// ActivityOverviewView is one row of GET /api/admin/activities.
type ActivityOverviewView struct {
	ActivityView
	CanceledCount int `json:"canceledCount"`
}

// StatsView is the response of GET /api/admin/stats.
type StatsView struct {
	Activities    int `json:"activities"`
	Signups       int `json:"signups"`
	Notifications int `json:"notifications"`
}

// SignupView is the JSON projection of a ledger row.
type SignupView struct {
	ID         string    `json:"id"`
	ActivityID string    `json:"activityId"`
	UserID     string    `json:"userId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NotificationView is the JSON projection of an inbox item.
type NotificationView struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	Link      string     `json:"link,omitempty"`
	IsRead    bool       `json:"isRead"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

// NotificationPageView is the response of GET /api/notifications.
type NotificationPageView struct {
	Items       []NotificationView `json:"items"`
	UnreadCount int                `json:"unreadCount"`
	NextCursor  string             `json:"nextCursor,omitempty"`
}

func newActivityView(a domain.Activity) ActivityView {
	return ActivityView{
		ID:          a.ID,
		Type:        string(a.Type),
		Title:       a.Title,
		Description: a.Description,
		Location:    a.Location,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		Capacity:    a.Capacity,
		CreatorID:   a.CreatorID,
		IsHidden:    a.Hidden,
		JoinedCount: a.JoinedCount,
		CreatedAt:   a.CreatedAt,
	}
}

func newSignupView(s domain.Signup) SignupView {
	return SignupView{
		ID:         s.ID,
		ActivityID: s.ActivityID,
		UserID:     s.UserID,
		Status:     string(s.Status),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func newNotificationPageView(page domain.NotificationPage) NotificationPageView {
	items := make([]NotificationView, 0, len(page.Items))
	for _, n := range page.Items {
		items = append(items, NotificationView{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Body:      n.Body,
			Link:      n.Link,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
			ReadAt:    n.ReadAt,
		})
	}
	view := NotificationPageView{Items: items, UnreadCount: page.UnreadCount}
	if page.Next != nil {
		view.NextCursor = persistence.EncodeCursor(page.Next)
	}
	return view
}
