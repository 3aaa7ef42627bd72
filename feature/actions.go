package feature

import (
	"context"
	"fmt"
)

// SeparatorLabel is the label hosts render as a menu divider.
const SeparatorLabel = "-"

// ActionDef describes one entry of a feature's action table.
type ActionDef[T any] struct {
	ID    string
	Label string

	// RequiresSelection hides the action while nothing is selected.
	RequiresSelection bool

	// Run receives the controller first so method expressions such as
	// (*Controller[T]).Remove can be used directly.
	Run func(c *Controller[T], ctx context.Context) error
}

// Action is an invokable descriptor handed to the host.
type Action struct {
	invoke    func(ctx context.Context) error
	ID        string
	Label     string
	Separator bool
}

// Invoke runs the action. Separators do nothing.
func (a Action) Invoke(ctx context.Context) error {
	if a.invoke == nil {
		return nil
	}
	return a.invoke(ctx)
}

// ActionList is an ordered set of actions computed for one request.
type ActionList struct {
	actions []Action
}

// Actions returns the actions in display order.
func (l ActionList) Actions() []Action {
	return append([]Action(nil), l.actions...)
}

// Labels returns the display labels in order, separators included.
func (l ActionList) Labels() []string {
	labels := make([]string, 0, len(l.actions))
	for _, a := range l.actions {
		labels = append(labels, a.Label)
	}
	return labels
}

// Len returns the number of entries, separators included.
func (l ActionList) Len() int {
	return len(l.actions)
}

// Lookup finds an action by ID.
func (l ActionList) Lookup(id string) (Action, bool) {
	for _, a := range l.actions {
		if !a.Separator && a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// Invoke dispatches to the action with the given ID.
func (l ActionList) Invoke(ctx context.Context, id string) error {
	a, ok := l.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, id)
	}
	return a.Invoke(ctx)
}

// BuildActions computes the action list for the given selection state.
// Actions that require a selection are omitted without one, and are
// preceded by a single separator when present. Each invocation runs
// through mw.
func BuildActions[T any](defs []ActionDef[T], hasSelection bool, c *Controller[T], mw ...Middleware) ActionList {
	list := ActionList{actions: make([]Action, 0, len(defs)+1)}
	separated := false
	for _, def := range defs {
		if def.RequiresSelection {
			if !hasSelection {
				continue
			}
			if !separated {
				list.actions = append(list.actions, Action{Label: SeparatorLabel, Separator: true})
				separated = true
			}
		}
		run := def.Run
		invoke := func(ctx context.Context) error {
			return run(c, ctx)
		}
		list.actions = append(list.actions, Action{
			ID:     def.ID,
			Label:  def.Label,
			invoke: chain(def.ID, invoke, mw),
		})
	}
	return list
}
