package api

import (
	"errors"
	"fmt"
)

// ErrSubjectNotFound indicates the subject id does not exist (404).
var ErrSubjectNotFound = errors.New("subject not found")

// ErrSubjectUnavailable indicates the subject is inactive, expired, or
// locked for this learner (403).
var ErrSubjectUnavailable = errors.New("subject not available")

// ErrAlreadyCompleted indicates the subject was already completed and
// cannot be started again. Non-retryable.
var ErrAlreadyCompleted = errors.New("subject already completed")

// TransportError wraps a network failure or an unexpected HTTP status.
// Transport errors are surfaced with a retry affordance.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ContractError indicates the backend returned a payload that does not
// satisfy the expected response contract.
type ContractError struct {
	Op  string
	Err error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: bad response payload: %v", e.Op, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }

// IsRetryable reports whether the user should be offered a retry action.
// Not-found, unavailable, and already-completed are terminal for the
// session; everything else is worth one more attempt.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrSubjectNotFound) ||
		errors.Is(err, ErrSubjectUnavailable) ||
		errors.Is(err, ErrAlreadyCompleted) {
		return false
	}
	return true
}
