package lock

import "errors"

// Lock-related errors.
var (
	// ErrLockTimeout is returned when a lock cannot be acquired within the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")
	// ErrBusy is returned when an exclusive section is already running.
	ErrBusy = errors.New("exclusive operation already running")
)
