package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound        = errors.New("auth: not found")
	ErrConflict        = errors.New("auth: already exists")
	ErrInvalidInput    = errors.New("auth: invalid input")
	ErrForbidden       = errors.New("auth: insufficient role")
	ErrAccountDisabled = errors.New("auth: account deactivated")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// that callers cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidToken indicates the bearer token failed validation.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// LockedError rejects authentication while an account's lockout window is
// open. It carries the remaining wait so clients can surface a retry hint.
type LockedError struct {
	Until time.Time
	now   time.Time
}

// NewLockedError builds a LockedError relative to now.
func NewLockedError(until, now time.Time) *LockedError {
	return &LockedError{Until: until, now: now}
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("auth: account locked, try again in %d minute(s)", e.RetryAfterMinutes())
}

// RetryAfterMinutes returns the remaining lock time rounded up to whole
// minutes. It is at least 1 while the lock is open.
func (e *LockedError) RetryAfterMinutes() int {
	remaining := e.Until.Sub(e.now)
	if remaining <= 0 {
		return 0
	}
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
