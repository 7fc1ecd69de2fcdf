package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Maqingtian/campus-hub/internal/domain"
)

// CreateNotification implements domain.NotificationStore.
func (s *Store) CreateNotification(ctx context.Context, notification domain.Notification) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	if notification.DedupeKey != "" {
		for _, existing := range s.notifications {
			if existing.UserID == notification.UserID && existing.DedupeKey == notification.DedupeKey {
				out := existing
				return &out, nil
			}
		}
	}
	s.notifications[notification.ID] = notification
	return &notification, nil
}

// ListNotifications implements domain.NotificationStore, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.Notification, *domain.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, nil, err
	}

	items := make([]domain.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID != userID {
			continue
		}
		if cursor != nil && !olderThan(n, *cursor) {
			continue
		}
		items = append(items, n)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if len(items) > limit {
		items = items[:limit]
	}
	var next *domain.Cursor
	if len(items) == limit && limit > 0 {
		last := items[len(items)-1]
		next = &domain.Cursor{At: last.CreatedAt, ID: last.ID}
	}
	return items, next, nil
}

// CountUnread implements domain.NotificationStore.
func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return 0, err
	}
	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// MarkRead implements domain.NotificationStore.
func (s *Store) MarkRead(ctx context.Context, userID, notificationID string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return 0, err
	}
	n, ok := s.notifications[notificationID]
	if !ok || n.UserID != userID {
		return 0, nil
	}
	n.IsRead = true
	n.ReadAt = &at
	s.notifications[notificationID] = n
	return 1, nil
}

// MarkAllRead implements domain.NotificationStore.
func (s *Store) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return 0, err
	}
	updated := 0
	for id, n := range s.notifications {
		if n.UserID != userID || n.IsRead {
			continue
		}
		readAt := at
		n.IsRead = true
		n.ReadAt = &readAt
		s.notifications[id] = n
		updated++
	}
	return updated, nil
}

func olderThan(n domain.Notification, cursor domain.Cursor) bool {
	if n.CreatedAt.Equal(cursor.At) {
		return n.ID < cursor.ID
	}
	return n.CreatedAt.Before(cursor.At)
}
