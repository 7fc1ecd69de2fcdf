// Package domain defines the business logic for campus activities, signups and notifications.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Maqingtian/campus-hub/internal/observability"
)

// SignupService enforces capacity and idempotency rules for activity signups.
// It owns no storage; every join and cancel runs as one unit of work on the store.
type SignupService struct {
	store SignupStore
	clock func() time.Time
	newID func() string
}

// ServiceOption customises a service's clock or id source.
type ServiceOption func(*serviceDeps)

type serviceDeps struct {
	clock func() time.Time
	newID func() string
}

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) ServiceOption {
	return func(d *serviceDeps) { d.clock = clock }
}

// WithIDGenerator overrides uuid.NewString.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(d *serviceDeps) { d.newID = newID }
}

func buildDeps(opts []ServiceOption) serviceDeps {
	deps := serviceDeps{clock: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&deps)
	}
	return deps
}

// NewSignupService constructs a SignupService.
func NewSignupService(store SignupStore, opts ...ServiceOption) *SignupService {
	deps := buildDeps(opts)
	return &SignupService{store: store, clock: deps.clock, newID: deps.newID}
}

// Join signs userID up for activityID.
//
// The activity row is locked for the duration of the unit of work, so two
// concurrent joins for the same activity cannot both pass the capacity check.
// On success exactly one row exists for the pair with status JOINED.
func (s *SignupService) Join(ctx context.Context, activityID, userID string) (*Signup, error) {
	if s == nil || s.store == nil {
		return nil, ErrUnavailable
	}
	activityID, userID = strings.TrimSpace(activityID), strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if activityID == "" {
		return nil, ErrActivityNotFound
	}

	start := time.Now()
	var result *Signup
	err := s.store.WithinTx(ctx, func(ctx context.Context, ledger SignupLedger) error {
		activity, err := ledger.FindActivityByID(ctx, activityID)
		if err != nil {
			return err
		}
		if activity == nil {
			return ErrActivityNotFound
		}

		existing, err := ledger.FindSignup(ctx, activityID, userID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status == SignupStatusJoined {
			return ErrAlreadyJoined
		}

		joined, err := ledger.CountJoined(ctx, activityID)
		if err != nil {
			return err
		}
		if !activity.HasCapacityFor(joined) {
			return ErrCapacityExceeded
		}

		now := s.clock().UTC()
		row := Signup{
			ID:         s.newID(),
			ActivityID: activityID,
			UserID:     userID,
			Status:     SignupStatusJoined,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if existing != nil {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
		}

		result, err = ledger.UpsertSignup(ctx, row)
		return err
	})
	observability.ObserveSignupDuration(observability.OperationJoin, time.Since(start))
	observability.RecordSignupOutcome(observability.OperationJoin, joinResult(err))
	if err != nil {
		return nil, err
	}
	observability.RecordSignupPersisted(result.UpdatedAt)
	return result, nil
}

// Cancel withdraws userID from activityID. Canceling an already CANCELED row
// returns it unchanged.
func (s *SignupService) Cancel(ctx context.Context, activityID, userID string) (*Signup, error) {
	if s == nil || s.store == nil {
		return nil, ErrUnavailable
	}
	activityID, userID = strings.TrimSpace(activityID), strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	start := time.Now()
	var (
		result *Signup
		noop   bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, ledger SignupLedger) error {
		existing, err := ledger.FindSignup(ctx, activityID, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrSignupNotFound
		}
		if existing.Status == SignupStatusCanceled {
			result, noop = existing, true
			return nil
		}

		row := *existing
		row.Status = SignupStatusCanceled
		row.UpdatedAt = s.clock().UTC()
		result, err = ledger.UpsertSignup(ctx, row)
		return err
	})
	observability.ObserveSignupDuration(observability.OperationCancel, time.Since(start))
	observability.RecordSignupOutcome(observability.OperationCancel, cancelResult(err, noop))
	if err != nil {
		return nil, err
	}
	if !noop {
		observability.RecordSignupPersisted(result.UpdatedAt)
	}
	return result, nil
}

// ReadState reports the activity's JOINED count and whether userID holds one
// of them. userID may be empty for anonymous callers. The read takes no locks.
func (s *SignupService) ReadState(ctx context.Context, activityID, userID string) (SignupState, error) {
	if s == nil || s.store == nil {
		return SignupState{}, ErrUnavailable
	}
	joined, err := s.store.CountJoined(ctx, activityID)
	if err != nil {
		return SignupState{}, err
	}
	state := SignupState{JoinedCount: joined}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return state, nil
	}
	signup, err := s.store.FindSignup(ctx, activityID, userID)
	if err != nil {
		return SignupState{}, err
	}
	state.IsJoined = signup != nil && signup.Status == SignupStatusJoined
	return state, nil
}

func joinResult(err error) string {
	switch {
	case err == nil:
		return observability.ResultOK
	case errors.Is(err, ErrAlreadyJoined):
		return observability.ResultAlreadyJoined
	case errors.Is(err, ErrCapacityExceeded):
		return observability.ResultCapacityExceeded
	case errors.Is(err, ErrActivityNotFound):
		return observability.ResultNotFound
	default:
		return observability.ResultError
	}
}

func cancelResult(err error, noop bool) string {
	switch {
	case err == nil && noop:
		return observability.ResultNoop
	case err == nil:
		return observability.ResultOK
	case errors.Is(err, ErrSignupNotFound):
		return observability.ResultNotFound
	default:
		return observability.ResultError
	}
}
