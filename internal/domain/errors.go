package domain

import "errors"

var (
	// ErrActivityNotFound is returned when an activity cannot be located or is hidden from the caller.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrSignupNotFound is returned when no ledger row exists for an (activity, user) pair.
	ErrSignupNotFound = errors.New("signup not found")
	// ErrAlreadyJoined indicates the caller already holds a JOINED signup. Callers should treat it as informational.
	ErrAlreadyJoined = errors.New("already joined")
	// ErrCapacityExceeded indicates the activity has no free slot left.
	ErrCapacityExceeded = errors.New("activity is full")
	// ErrUnauthorized indicates an operation needs an acting user and none was supplied.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the acting user lacks the privilege for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrUnavailable indicates storage is unreachable or not configured.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrInvalidInput wraps validation failures on domain inputs.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotificationNotFound is returned when a notification does not exist for the recipient.
	ErrNotificationNotFound = errors.New("notification not found")
)
