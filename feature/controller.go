// Package feature implements a controller that binds a typed, in-memory
// list of items to a collection in a hierarchical configuration store.
//
// The controller keeps the list and the collection in step: every
// successful Load, Add or Remove leaves them with the same entries in the
// same order, and a failed operation leaves the list as it was. Adds go
// through a Creator, removals through a Confirmer; declining either is a
// successful no-op.
package feature

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/reglet-config-sdk/configstore"
)

// Definition is the static description of a feature.
type Definition[T any] struct {
	Name           string
	HelpTopic      string
	SectionPath    string
	CollectionName string
	RemovePrompt   string
	Actions        []ActionDef[T]
}

// Controller mediates CRUD between a host and one configuration collection.
// It is not safe for concurrent use; hosts drive it one operation at a time.
type Controller[T any] struct {
	def        Definition[T]
	accessor   configstore.Accessor
	codec      Codec[T]
	creator    Creator[T]
	confirmer  Confirmer
	help       HelpLauncher
	logger     *slog.Logger
	middleware []Middleware
	collection configstore.Collection
	items      []T
	selection  *selection
}

// selection remembers what the host selected. It is resolved against the
// current items whenever an action runs.
type selection struct {
	key   string
	index int
}

// Option configures a Controller.
type Option[T any] func(*Controller[T])

// WithCreator sets the collaborator that collects new entries.
func WithCreator[T any](cr Creator[T]) Option[T] {
	return func(c *Controller[T]) { c.creator = cr }
}

// WithConfirmer sets the collaborator that confirms removals.
func WithConfirmer[T any](cf Confirmer) Option[T] {
	return func(c *Controller[T]) { c.confirmer = cf }
}

// WithHelpLauncher sets the collaborator that opens help resources.
func WithHelpLauncher[T any](h HelpLauncher) Option[T] {
	return func(c *Controller[T]) { c.help = h }
}

// WithLogger sets the logger.
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(c *Controller[T]) { c.logger = l }
}

// New creates a controller for def backed by accessor. Collaborators are
// supplied as options.
func New[T any](def Definition[T], accessor configstore.Accessor, codec Codec[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		def:      def,
		accessor: accessor,
		codec:    codec,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("feature", def.Name)
	return c
}

// Name returns the feature's display name.
func (c *Controller[T]) Name() string {
	return c.def.Name
}

// HelpTopic returns the help resource identifier.
func (c *Controller[T]) HelpTopic() string {
	return c.def.HelpTopic
}

// Load reads every entry of the collection and replaces the item list.
// Any malformed entry aborts the load; the list is then empty.
func (c *Controller[T]) Load(ctx context.Context) error {
	coll, err := c.accessor.Collection(c.def.SectionPath, c.def.CollectionName)
	if err != nil {
		c.reset()
		return &SectionUnavailableError{
			Section:    c.def.SectionPath,
			Collection: c.def.CollectionName,
			Err:        err,
		}
	}

	entries := coll.Entries()
	items := make([]T, 0, len(entries))
	for i, entry := range entries {
		item, err := c.codec.FromEntry(entry)
		if err != nil {
			c.reset()
			c.logger.ErrorContext(ctx, "aborting load on malformed entry", "index", i, "error", err)
			return &MalformedEntryError{Index: i, Err: err}
		}
		items = append(items, item)
	}

	c.collection = coll
	c.items = items
	c.logger.DebugContext(ctx, "loaded configuration collection",
		"section", c.def.SectionPath,
		"collection", c.def.CollectionName,
		"count", len(items))
	return nil
}

func (c *Controller[T]) reset() {
	c.collection = nil
	c.items = nil
	c.selection = nil
}

// ensureLoaded loads the collection on first use so that items always
// mirror the store before it is mutated.
func (c *Controller[T]) ensureLoaded(ctx context.Context) error {
	if c.collection != nil {
		return nil
	}
	return c.Load(ctx)
}

// Add asks the creator for a new item with the given polarity and, unless
// the user cancels, appends it to the collection and then to the list.
func (c *Controller[T]) Add(ctx context.Context, allowed bool) error {
	if c.creator == nil {
		return fmt.Errorf("%w: creator", ErrCollaboratorMissing)
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return err
	}

	item, ok, err := c.creator.Create(ctx, CreateRequest{Allowed: allowed})
	if err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}
	if !ok {
		c.logger.DebugContext(ctx, "entry creation cancelled")
		return nil
	}

	key := c.codec.Key(item)
	if err := c.collection.Append(c.codec.ToEntry(item)); err != nil {
		return &PersistError{Op: "add", Key: key, Err: err}
	}
	c.items = append(c.items, item)

	c.logger.InfoContext(ctx, "added configuration entry", "key", key, "allowed", allowed)
	return nil
}

// AddAllowed is the host entry point for adding an allow rule.
func (c *Controller[T]) AddAllowed(ctx context.Context) error {
	return c.Add(ctx, true)
}

// AddDenied is the host entry point for adding a deny rule.
func (c *Controller[T]) AddDenied(ctx context.Context) error {
	return c.Add(ctx, false)
}

// Remove deletes the selected item after the user confirms. Anything other
// than an explicit yes leaves the collection untouched.
func (c *Controller[T]) Remove(ctx context.Context) error {
	index, ok := c.selectedIndex()
	if !ok {
		return ErrNothingSelected
	}
	if c.confirmer == nil {
		return fmt.Errorf("%w: confirmer", ErrCollaboratorMissing)
	}

	resp, err := c.confirmer.Confirm(ctx, c.def.Name, c.def.RemovePrompt)
	if err != nil {
		return fmt.Errorf("confirming removal: %w", err)
	}
	if resp != ResponseYes {
		c.logger.DebugContext(ctx, "removal not confirmed", "response", resp.String())
		return nil
	}

	key := c.codec.Key(c.items[index])
	if err := c.collection.RemoveAt(index); err != nil {
		return &PersistError{Op: "remove", Key: key, Err: err}
	}

	next := make([]T, 0, len(c.items)-1)
	next = append(next, c.items[:index]...)
	c.items = append(next, c.items[index+1:]...)
	c.selection = nil

	c.logger.InfoContext(ctx, "removed configuration entry", "key", key)
	return nil
}

// Items returns a copy of the current item list.
func (c *Controller[T]) Items() []T {
	return append([]T(nil), c.items...)
}

// Select marks the first item whose key matches as selected.
// It reports whether such an item exists; otherwise the selection is cleared.
func (c *Controller[T]) Select(key string) bool {
	for i, item := range c.items {
		if c.codec.Key(item) == key {
			c.selection = &selection{key: key, index: i}
			return true
		}
	}
	c.selection = nil
	return false
}

// SelectAt marks the item at index as selected.
func (c *Controller[T]) SelectAt(index int) bool {
	if index < 0 || index >= len(c.items) {
		c.selection = nil
		return false
	}
	c.selection = &selection{key: c.codec.Key(c.items[index]), index: index}
	return true
}

// ClearSelection drops the current selection.
func (c *Controller[T]) ClearSelection() {
	c.selection = nil
}

// Selected returns the selected item, if it still exists.
func (c *Controller[T]) Selected() (T, bool) {
	index, ok := c.selectedIndex()
	if !ok {
		var zero T
		return zero, false
	}
	return c.items[index], true
}

// selectedIndex resolves the selection against the current items. The
// remembered position wins while it still holds the selected key, which
// keeps duplicate keys distinct; otherwise the first match is used.
func (c *Controller[T]) selectedIndex() (int, bool) {
	if c.selection == nil {
		return 0, false
	}
	s := c.selection
	if s.index < len(c.items) && c.codec.Key(c.items[s.index]) == s.key {
		return s.index, true
	}
	for i, item := range c.items {
		if c.codec.Key(item) == s.key {
			return i, true
		}
	}
	return 0, false
}

// Actions computes the actions available for the current selection.
func (c *Controller[T]) Actions() ActionList {
	_, hasSelection := c.selectedIndex()
	return BuildActions(c.def.Actions, hasSelection, c, c.middleware...)
}

// ShowHelp dispatches the help topic to the help launcher. It returns true
// once the request is dispatched and does not wait for the resource.
func (c *Controller[T]) ShowHelp(ctx context.Context) bool {
	if c.help == nil {
		c.logger.WarnContext(ctx, "no help launcher configured")
		return false
	}
	if err := c.help.Open(ctx, c.def.HelpTopic); err != nil {
		c.logger.WarnContext(ctx, "failed to open help", "url", c.def.HelpTopic, "error", err)
		return false
	}
	return true
}
