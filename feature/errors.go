package feature

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrSectionUnavailable is returned when the feature's section or
	// collection cannot be resolved in the active configuration scope.
	ErrSectionUnavailable = errors.New("configuration section unavailable")

	// ErrMalformedEntry is returned when a persisted entry cannot be
	// converted into an item.
	ErrMalformedEntry = errors.New("malformed configuration entry")

	// ErrPersistFailed is returned when the backing collection rejects a change.
	ErrPersistFailed = errors.New("failed to persist configuration change")

	// ErrNothingSelected is returned by Remove when no item is selected.
	ErrNothingSelected = errors.New("no item selected")

	// ErrUnknownAction is returned when invoking an action ID that is not
	// in the current action list.
	ErrUnknownAction = errors.New("unknown action")

	// ErrCollaboratorMissing is returned when an operation needs a
	// collaborator the controller was built without.
	ErrCollaboratorMissing = errors.New("collaborator not configured")
)

// SectionUnavailableError reports which section and collection failed to
// resolve. It unwraps to the accessor's error.
type SectionUnavailableError struct {
	Err        error
	Section    string
	Collection string
}

func (e *SectionUnavailableError) Error() string {
	return fmt.Sprintf("configuration section unavailable: %s/%s: %v", e.Section, e.Collection, e.Err)
}

// Is implements error matching for errors.Is() checks.
func (e *SectionUnavailableError) Is(target error) bool {
	return target == ErrSectionUnavailable
}

func (e *SectionUnavailableError) Unwrap() error {
	return e.Err
}

// MalformedEntryError identifies the entry that failed conversion.
type MalformedEntryError struct {
	Err   error
	Index int
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed configuration entry at index %d: %v", e.Index, e.Err)
}

// Is implements error matching for errors.Is() checks.
func (e *MalformedEntryError) Is(target error) bool {
	return target == ErrMalformedEntry
}

func (e *MalformedEntryError) Unwrap() error {
	return e.Err
}

// PersistError describes a store write the backing collection rejected.
type PersistError struct {
	Err error
	Op  string
	Key string
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to %s %q: %v", e.Op, e.Key, e.Err)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, feature.ErrPersistFailed)
func (e *PersistError) Is(target error) bool {
	return target == ErrPersistFailed
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
