// Package memstore provides an in-memory configstore.Accessor.
package memstore

import (
	"fmt"
	"sync"

	"github.com/reglet-dev/reglet-config-sdk/configstore"
)

var _ configstore.Accessor = (*Store)(nil)

// Store holds collections in memory, keyed by section path then name.
type Store struct {
	sections map[string]map[string][]configstore.Entry
	scope    configstore.Scope
	failNext error
	mu       sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithScope restricts the sections visible through Collection.
func WithScope(scope configstore.Scope) Option {
	return func(s *Store) { s.scope = scope }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		sections: make(map[string]map[string][]configstore.Entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed creates the collection if needed and appends entries to it.
func (s *Store) Seed(sectionPath, name string, entries ...configstore.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec, ok := s.sections[sectionPath]
	if !ok {
		sec = make(map[string][]configstore.Entry)
		s.sections[sectionPath] = sec
	}
	sec[name] = append(sec[name], entries...)
}

// FailNext makes the next Append or RemoveAt return err without mutating.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// Collection implements configstore.Accessor.
func (s *Store) Collection(sectionPath, name string) (configstore.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scope.Contains(sectionPath) {
		return nil, &configstore.NotFoundError{Section: sectionPath}
	}
	sec, ok := s.sections[sectionPath]
	if !ok {
		return nil, &configstore.NotFoundError{Section: sectionPath}
	}
	if _, ok := sec[name]; !ok {
		return nil, &configstore.NotFoundError{Section: sectionPath, Collection: name}
	}
	return &collection{store: s, section: sectionPath, name: name}, nil
}

type collection struct {
	store   *Store
	section string
	name    string
}

func (c *collection) Entries() []configstore.Entry {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	entries := c.store.sections[c.section][c.name]
	out := make([]configstore.Entry, len(entries))
	copy(out, entries)
	return out
}

func (c *collection) Len() int {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return len(c.store.sections[c.section][c.name])
}

func (c *collection) Append(entry configstore.Entry) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.store.takeFailure(); err != nil {
		return err
	}
	sec := c.store.sections[c.section]
	sec[c.name] = append(sec[c.name], entry)
	return nil
}

func (c *collection) RemoveAt(index int) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.store.takeFailure(); err != nil {
		return err
	}
	sec := c.store.sections[c.section]
	entries := sec[c.name]
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("%w: %d", configstore.ErrIndexOutOfRange, index)
	}
	next := make([]configstore.Entry, 0, len(entries)-1)
	next = append(next, entries[:index]...)
	sec[c.name] = append(next, entries[index+1:]...)
	return nil
}

func (s *Store) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}
