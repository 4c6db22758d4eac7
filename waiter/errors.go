package waiter

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimeout matches every *TimeoutError via errors.Is.
var ErrTimeout = errors.New("waiter: timeout")

// ErrObserverClosed is returned when a document closes its change channel
// before the wait resolved (e.g. the page went away).
var ErrObserverClosed = errors.New("waiter: observer closed")

// TimeoutError is returned when no element matched before the deadline.
type TimeoutError struct {
	Selector string
	After    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("waiter: element with selector %q not found within %s", e.Selector, e.After)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// Timeout reports true, so callers can classify the error without
// importing this package.
func (e *TimeoutError) Timeout() bool { return true }
