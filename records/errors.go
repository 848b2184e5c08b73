package records

import (
	"errors"
	"fmt"
)

// ErrSubmitInProgress is returned while a form is already writing.
var ErrSubmitInProgress = errors.New("submit already in progress")

// ErrNothingStaged is returned by ConfirmDelete without a staged candidate.
var ErrNothingStaged = errors.New("no record staged for deletion")

// ValidationError names the first field that failed its rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthError means a write was attempted without a session.
type AuthError struct {
	Op string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: not authenticated", e.Op)
}

// PersistenceError wraps a storage failure. Unwrap gives the cause, so
// errors.Is(err, db.ErrNotFound) works through it.
type PersistenceError struct {
	Op         string
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
