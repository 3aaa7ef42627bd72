package yamlstore

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/reglet-config-sdk/configstore"
)

// collection is a handle addressed by its key path. It re-resolves against
// the current document on every call so it never observes a stale copy.
type collection struct {
	store   *Store
	section string
	keys    []string
}

// sequence resolves the collection value. A value that is not a sequence
// is reported rather than treated as empty, so a write never replaces it.
func (c *collection) sequence() ([]any, error) {
	name := c.keys[len(c.keys)-1]
	section, ok := lookupSection(c.store.doc, c.keys[:len(c.keys)-1])
	if !ok {
		return nil, &configstore.NotFoundError{Section: c.section}
	}
	v, ok := lookupKey(section, name)
	if !ok {
		return nil, &configstore.NotFoundError{Section: c.section, Collection: name}
	}
	return c.asSequence(v)
}

func (c *collection) asSequence(v any) ([]any, error) {
	switch seq := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return seq, nil
	default:
		return nil, &configstore.MalformedCollectionError{
			Section:    c.section,
			Collection: c.keys[len(c.keys)-1],
			Got:        valueKind(v),
		}
	}
}

func valueKind(v any) string {
	if _, ok := v.(yaml.MapSlice); ok {
		return "mapping"
	}
	return fmt.Sprintf("%T", v)
}

// Entries returns nil when the collection no longer resolves to a sequence.
func (c *collection) Entries() []configstore.Entry {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	seq, err := c.sequence()
	if err != nil {
		return nil
	}
	out := make([]configstore.Entry, 0, len(seq))
	for _, item := range seq {
		out = append(out, toEntry(item))
	}
	return out
}

func (c *collection) Len() int {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	seq, _ := c.sequence()
	return len(seq)
}

func (c *collection) Append(entry configstore.Entry) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	seq, err := c.sequence()
	if err != nil {
		return err
	}
	next := make([]any, 0, len(seq)+1)
	next = append(next, seq...)
	next = append(next, fromEntry(entry))
	return c.store.commit(setPath(c.store.doc, c.keys, next))
}

func (c *collection) RemoveAt(index int) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	seq, err := c.sequence()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(seq) {
		return fmt.Errorf("%w: %d", configstore.ErrIndexOutOfRange, index)
	}
	next := make([]any, 0, len(seq)-1)
	next = append(next, seq[:index]...)
	next = append(next, seq[index+1:]...)
	return c.store.commit(setPath(c.store.doc, c.keys, next))
}

// toEntry converts a decoded sequence element. Non-mapping elements become
// an empty entry so conversion can reject them with context.
func toEntry(v any) configstore.Entry {
	m, ok := v.(yaml.MapSlice)
	if !ok {
		return configstore.Entry{}
	}
	attrs := make([]configstore.Attribute, 0, len(m))
	for _, item := range m {
		attrs = append(attrs, configstore.Attribute{Name: fmt.Sprint(item.Key), Value: item.Value})
	}
	return configstore.NewEntry(attrs...)
}

func fromEntry(e configstore.Entry) yaml.MapSlice {
	attrs := e.Attributes()
	m := make(yaml.MapSlice, 0, len(attrs))
	for _, a := range attrs {
		m = append(m, yaml.MapItem{Key: a.Name, Value: a.Value})
	}
	return m
}
