package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name must be at most 100 characters")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 128 characters")
	ErrInvalidEmail       = errors.New("invalid email format")
)

// ===== Event Errors =====
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrEventAtCapacity  = errors.New("event is at capacity")
	ErrNotOrganizer     = errors.New("only the organizer can modify this event")
	ErrGuestNotAllowed  = errors.New("guests cannot perform this action")
	ErrInvalidCategory  = errors.New("unknown event category")
	ErrInvalidCapacity  = errors.New("capacity must be at least 1 and not below the current attendee count")
	ErrToggleConflict   = errors.New("attendance changed concurrently, retry limit reached")
)

// CapacityError reports a join attempt against a full event. It carries the
// capacity and current attendee count so handlers can include them in the
// response. errors.Is(err, ErrEventAtCapacity) matches it.
type CapacityError struct {
	Capacity int
	Current  int
}

func (e *CapacityError) Error() string {
	return ErrEventAtCapacity.Error()
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrEventAtCapacity
}
