package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationSignupConfirmed      NotificationType = "SIGNUP_CONFIRMED"
	NotificationSignupCanceled       NotificationType = "SIGNUP_CANCELED"
	NotificationActivityHidden       NotificationType = "ACTIVITY_HIDDEN"
	NotificationAnswerOnYourQuestion NotificationType = "ANSWER_ON_YOUR_QUESTION"
)

const (
	defaultNotificationPageSize = 20
	maxNotificationPageSize     = 100
)

// Notification is one user-targeted inbox item.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Body      string
	Link      string
	DedupeKey string
	IsRead    bool
	CreatedAt time.Time
	ReadAt    *time.Time
}

// CreateNotificationInput describes one producer notification request.
type CreateNotificationInput struct {
	UserID    string
	Type      NotificationType
	Title     string
	Body      string
	Link      string
	DedupeKey string
}

// NotificationPage is one newest-first page of a user's inbox.
type NotificationPage struct {
	Items       []Notification
	UnreadCount int
	Next        *Cursor
}

// NotificationService orchestrates the user inbox.
type NotificationService struct {
	store    NotificationStore
	clock    func() time.Time
	newID    func() string
	pageSize int
}

// NewNotificationService constructs a NotificationService. pageSize <= 0 uses the default of 20.
func NewNotificationService(store NotificationStore, pageSize int, opts ...ServiceOption) *NotificationService {
	deps := buildDeps(opts)
	if pageSize <= 0 {
		pageSize = defaultNotificationPageSize
	}
	return &NotificationService{store: store, clock: deps.clock, newID: deps.newID, pageSize: pageSize}
}

// CreateNotification stores one notification, de-duplicating on (user, dedupe key).
func (s *NotificationService) CreateNotification(ctx context.Context, input CreateNotificationInput) (*Notification, error) {
	if s == nil || s.store == nil {
		return nil, ErrUnavailable
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: recipient user id is required", ErrInvalidInput)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: notification title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(string(input.Type)) == "" {
		return nil, fmt.Errorf("%w: notification type is required", ErrInvalidInput)
	}

	return s.store.CreateNotification(ctx, Notification{
		ID:        s.newID(),
		UserID:    userID,
		Type:      input.Type,
		Title:     title,
		Body:      strings.TrimSpace(input.Body),
		Link:      strings.TrimSpace(input.Link),
		DedupeKey: strings.TrimSpace(input.DedupeKey),
		CreatedAt: s.clock().UTC(),
	})
}

// ListNotifications returns the user's inbox newest first along with the unread count.
func (s *NotificationService) ListNotifications(ctx context.Context, userID string, limit int, cursor *Cursor) (NotificationPage, error) {
	if s == nil || s.store == nil {
		return NotificationPage{}, ErrUnavailable
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return NotificationPage{}, ErrUnauthorized
	}
	switch {
	case limit <= 0:
		limit = s.pageSize
	case limit > maxNotificationPageSize:
		limit = maxNotificationPageSize
	}

	items, next, err := s.store.ListNotifications(ctx, userID, cursor, limit)
	if err != nil {
		return NotificationPage{}, err
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return NotificationPage{}, err
	}
	return NotificationPage{Items: items, UnreadCount: unread, Next: next}, nil
}

// UnreadCount reports how many notifications the user has not read.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if s == nil || s.store == nil {
		return 0, ErrUnavailable
	}
	if strings.TrimSpace(userID) == "" {
		return 0, ErrUnauthorized
	}
	return s.store.CountUnread(ctx, userID)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if s == nil || s.store == nil {
		return ErrUnavailable
	}
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthorized
	}
	notificationID = strings.TrimSpace(notificationID)
	if notificationID == "" {
		return ErrNotificationNotFound
	}
	updated, err := s.store.MarkRead(ctx, userID, notificationID, s.clock().UTC())
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if s == nil || s.store == nil {
		return 0, ErrUnavailable
	}
	if strings.TrimSpace(userID) == "" {
		return 0, ErrUnauthorized
	}
	return s.store.MarkAllRead(ctx, userID, s.clock().UTC())
}
