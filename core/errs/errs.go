// Package errs defines the error taxonomy shared by the coordination core.
// Callers branch on error kinds with the Is* helpers; every kind is a typed
// error so diagnostics (current status, offending reference) survive wrapping.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or contradictory input. It is returned
// before any state mutation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "validation: " + e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a reference to a nonexistent entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NotFound builds a NotFoundError for the given entity kind and id.
func NotFound(kind, id string) error { return &NotFoundError{Kind: kind, ID: id} }

// InvalidTransitionError reports a state-machine edge that does not exist.
// From and To are surfaced for caller diagnostics.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition %s -> %s", e.Entity, e.From, e.To)
}

// InvalidTransition builds an InvalidTransitionError.
func InvalidTransition(entity, from, to string) error {
	return &InvalidTransitionError{Entity: entity, From: from, To: to}
}

// ConflictError reports an optimistic-concurrency loss, e.g. a request that
// was already assigned when accept was attempted. Callers must not retry the
// same operation blindly; they may re-fetch and try a different one.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return "conflict: " + e.Msg }

// Conflictf builds a ConflictError from a format string.
func Conflictf(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// DuplicateBidError reports a second PENDING bid by the same agency on the
// same request.
type DuplicateBidError struct {
	RequestID string
	AgencyID  string
}

func (e *DuplicateBidError) Error() string {
	return fmt.Sprintf("agency %s already has a pending bid on request %s", e.AgencyID, e.RequestID)
}

// UnavailableError reports a collaborator failure such as a distance
// provider timeout. It never escapes findMatches as a hard failure.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return e.Op + " unavailable"
	}
	return fmt.Sprintf("%s unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Unavailable wraps a collaborator failure.
func Unavailable(op string, err error) error { return &UnavailableError{Op: op, Err: err} }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var e *InvalidTransitionError
	return errors.As(err, &e)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// IsDuplicateBid reports whether err is a DuplicateBidError.
func IsDuplicateBid(err error) bool {
	var e *DuplicateBidError
	return errors.As(err, &e)
}

// IsUnavailable reports whether err is an UnavailableError.
func IsUnavailable(err error) bool {
	var e *UnavailableError
	return errors.As(err, &e)
}
