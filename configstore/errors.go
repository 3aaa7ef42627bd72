package configstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a section or collection is not present
	// in the active configuration scope.
	ErrNotFound = errors.New("configuration not found")

	// ErrIndexOutOfRange is returned by RemoveAt for an invalid position.
	ErrIndexOutOfRange = errors.New("entry index out of range")

	// ErrMalformedCollection is returned when a collection key holds
	// something other than a sequence of entries.
	ErrMalformedCollection = errors.New("malformed configuration collection")
)

// NotFoundError identifies which section or collection could not be resolved.
type NotFoundError struct {
	Section    string
	Collection string
}

func (e *NotFoundError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("configuration section not found: %s", e.Section)
	}
	return fmt.Sprintf("configuration collection not found: %s in section %s", e.Collection, e.Section)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, configstore.ErrNotFound)
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MalformedCollectionError reports a collection whose stored value is not a
// sequence. Got names the kind of value found.
type MalformedCollectionError struct {
	Section    string
	Collection string
	Got        string
}

func (e *MalformedCollectionError) Error() string {
	return fmt.Sprintf("configuration collection %s in section %s is not a sequence (got %s)", e.Collection, e.Section, e.Got)
}

// Is implements error matching for errors.Is() checks.
func (e *MalformedCollectionError) Is(target error) bool {
	return target == ErrMalformedCollection
}
