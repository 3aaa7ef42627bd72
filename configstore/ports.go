// Package configstore defines the ports used to reach named collections
// inside a hierarchical configuration document.
//
// The package is schema-agnostic: entries are ordered attribute lists and
// typed interpretation belongs to the caller.
package configstore

// Accessor resolves a named sub-collection of a configuration section.
type Accessor interface {
	// Collection returns a handle to the collection name inside the section
	// addressed by sectionPath (e.g. "system.webServer/security/requestFiltering").
	// Returns a *NotFoundError when either is absent from the active scope.
	Collection(sectionPath, name string) (Collection, error)
}

// Collection is an ordered, mutable handle to a configuration collection.
type Collection interface {
	// Entries returns a snapshot of the entries in document order.
	Entries() []Entry

	// Len returns the number of entries.
	Len() int

	// Append adds an entry at the end and persists the change.
	Append(entry Entry) error

	// RemoveAt deletes the entry at index and persists the change.
	RemoveAt(index int) error
}
