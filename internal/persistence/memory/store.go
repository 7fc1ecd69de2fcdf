// Package memory provides an in-process implementation of the campus-hub
// storage contracts for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Maqingtian/campus-hub/internal/domain"
)

type signupKey struct {
	activityID string
	userID     string
}

// Store keeps activities, signups and notifications in maps.
//
// Units of work are serialised by txMu, which gives the same guarantee as a
// row lock on the activity: no two joins observe the JOINED count at once.
type Store struct {
	txMu sync.Mutex

	mu            sync.RWMutex
	activities    map[string]domain.Activity
	signups       map[signupKey]domain.Signup
	notifications map[string]domain.Notification
	unavailable   bool
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		activities:    make(map[string]domain.Activity),
		signups:       make(map[signupKey]domain.Signup),
		notifications: make(map[string]domain.Notification),
	}
}

// SetUnavailable makes every subsequent call fail with domain.ErrUnavailable.
func (s *Store) SetUnavailable(unavailable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = unavailable
}

func (s *Store) check() error {
	if s.unavailable {
		return domain.ErrUnavailable
	}
	return nil
}

// CreateActivity implements domain.ActivityStore.
func (s *Store) CreateActivity(ctx context.Context, activity domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	activity.JoinedCount = 0
	s.activities[activity.ID] = cloneActivity(activity)
	return nil
}

// FindActivityByID implements domain.ActivityStore and domain.SignupLedger.
func (s *Store) FindActivityByID(ctx context.Context, id string) (*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	activity, ok := s.activities[id]
	if !ok {
		return nil, nil
	}
	out := cloneActivity(activity)
	return &out, nil
}

// ListActivities implements domain.ActivityStore.
func (s *Store) ListActivities(ctx context.Context, filter domain.ActivityFilter) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	joined := make(map[string]int)
	for key, signup := range s.signups {
		if signup.Status == domain.SignupStatusJoined {
			joined[key.activityID]++
		}
	}

	out := make([]domain.Activity, 0, len(s.activities))
	for _, activity := range s.activities {
		if !filter.Matches(activity) {
			continue
		}
		item := cloneActivity(activity)
		item.JoinedCount = joined[activity.ID]
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

// SetActivityHidden implements domain.ActivityStore.
func (s *Store) SetActivityHidden(ctx context.Context, id string, hidden bool, at time.Time) (*domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	activity, ok := s.activities[id]
	if !ok {
		return nil, nil
	}
	activity.Hidden = hidden
	activity.UpdatedAt = at
	s.activities[id] = activity
	out := cloneActivity(activity)
	return &out, nil
}

// ListActivitiesNewest implements domain.ActivityStore.
func (s *Store) ListActivitiesNewest(ctx context.Context, limit int) ([]domain.ActivityOverview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	out := make([]domain.ActivityOverview, 0, len(s.activities))
	for _, activity := range s.activities {
		out = append(out, domain.ActivityOverview{Activity: cloneActivity(activity)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	index := make(map[string]int, len(out))
	for i := range out {
		index[out[i].ID] = i
	}
	for key, signup := range s.signups {
		i, ok := index[key.activityID]
		if !ok {
			continue
		}
		switch signup.Status {
		case domain.SignupStatusJoined:
			out[i].JoinedCount++
		case domain.SignupStatusCanceled:
			out[i].CanceledCount++
		}
	}
	return out, nil
}

// CountStats implements domain.ActivityStore.
func (s *Store) CountStats(ctx context.Context) (domain.HubStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return domain.HubStats{}, err
	}
	stats := domain.HubStats{Signups: len(s.signups), Notifications: len(s.notifications)}
	for _, activity := range s.activities {
		if !activity.Hidden {
			stats.Activities++
		}
	}
	return stats, nil
}

// FindSignup implements domain.SignupLedger.
func (s *Store) FindSignup(ctx context.Context, activityID, userID string) (*domain.Signup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	signup, ok := s.signups[signupKey{activityID, userID}]
	if !ok {
		return nil, nil
	}
	return &signup, nil
}

// CountJoined implements domain.SignupLedger.
func (s *Store) CountJoined(ctx context.Context, activityID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return 0, err
	}
	return s.countJoinedLocked(activityID, nil), nil
}

// UpsertSignup implements domain.SignupLedger outside of a unit of work.
func (s *Store) UpsertSignup(ctx context.Context, signup domain.Signup) (*domain.Signup, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	stored := s.upsertLocked(signup)
	return &stored, nil
}

// WithinTx implements domain.SignupStore. Writes made through the ledger are
// staged and applied only when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, ledger domain.SignupLedger) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	err := s.check()
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &txLedger{store: s, pending: make(map[signupKey]domain.Signup)}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, signup := range tx.pending {
		s.upsertLocked(signup)
	}
	return nil
}

func (s *Store) upsertLocked(signup domain.Signup) domain.Signup {
	key := signupKey{signup.ActivityID, signup.UserID}
	if existing, ok := s.signups[key]; ok {
		existing.Status = signup.Status
		existing.UpdatedAt = signup.UpdatedAt
		s.signups[key] = existing
		return existing
	}
	s.signups[key] = signup
	return signup
}

func (s *Store) countJoinedLocked(activityID string, overlay map[signupKey]domain.Signup) int {
	count := 0
	for key, signup := range s.signups {
		if key.activityID != activityID {
			continue
		}
		if staged, ok := overlay[key]; ok {
			signup = staged
		}
		if signup.Status == domain.SignupStatusJoined {
			count++
		}
	}
	for key, staged := range overlay {
		if key.activityID != activityID {
			continue
		}
		if _, exists := s.signups[key]; !exists && staged.Status == domain.SignupStatusJoined {
			count++
		}
	}
	return count
}

// Signups returns every ledger row for an activity; tests use it to check row uniqueness.
func (s *Store) Signups(activityID string) []domain.Signup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Signup, 0)
	for key, signup := range s.signups {
		if key.activityID == activityID {
			out = append(out, signup)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

type txLedger struct {
	store   *Store
	pending map[signupKey]domain.Signup
}

func (t *txLedger) FindActivityByID(ctx context.Context, id string) (*domain.Activity, error) {
	return t.store.FindActivityByID(ctx, id)
}

func (t *txLedger) FindSignup(ctx context.Context, activityID, userID string) (*domain.Signup, error) {
	if staged, ok := t.pending[signupKey{activityID, userID}]; ok {
		return &staged, nil
	}
	return t.store.FindSignup(ctx, activityID, userID)
}

func (t *txLedger) CountJoined(ctx context.Context, activityID string) (int, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.store.countJoinedLocked(activityID, t.pending), nil
}

func (t *txLedger) UpsertSignup(ctx context.Context, signup domain.Signup) (*domain.Signup, error) {
	key := signupKey{signup.ActivityID, signup.UserID}
	if staged, ok := t.pending[key]; ok {
		staged.Status = signup.Status
		staged.UpdatedAt = signup.UpdatedAt
		t.pending[key] = staged
		return &staged, nil
	}

	t.store.mu.RLock()
	existing, ok := t.store.signups[key]
	t.store.mu.RUnlock()
	if ok {
		existing.Status = signup.Status
		existing.UpdatedAt = signup.UpdatedAt
		signup = existing
	}
	t.pending[key] = signup
	return &signup, nil
}

func cloneActivity(a domain.Activity) domain.Activity {
	if a.EndTime != nil {
		end := *a.EndTime
		a.EndTime = &end
	}
	if a.Capacity != nil {
		capacity := *a.Capacity
		a.Capacity = &capacity
	}
	return a
}
