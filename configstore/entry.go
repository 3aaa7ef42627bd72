package configstore

// Attribute is one named value of an Entry.
type Attribute struct {
	Name  string
	Value any
}

// Entry is a raw configuration record. Attribute order is preserved so a
// document can be written back the way it was read.
type Entry struct {
	attrs []Attribute
}

// NewEntry creates an entry from the given attributes.
func NewEntry(attrs ...Attribute) Entry {
	e := Entry{}
	for _, a := range attrs {
		e = e.With(a.Name, a.Value)
	}
	return e
}

// Get returns the value stored under name.
func (e Entry) Get(name string) (any, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// With returns a copy of the entry with name set to value. An existing
// attribute keeps its position.
func (e Entry) With(name string, value any) Entry {
	attrs := make([]Attribute, 0, len(e.attrs)+1)
	replaced := false
	for _, a := range e.attrs {
		if a.Name == name {
			a.Value = value
			replaced = true
		}
		attrs = append(attrs, a)
	}
	if !replaced {
		attrs = append(attrs, Attribute{Name: name, Value: value})
	}
	return Entry{attrs: attrs}
}

// Attributes returns a copy of the attributes in order.
func (e Entry) Attributes() []Attribute {
	out := make([]Attribute, len(e.attrs))
	copy(out, e.attrs)
	return out
}

// Len returns the number of attributes.
func (e Entry) Len() int {
	return len(e.attrs)
}

// Map returns the attributes as a map, losing order.
func (e Entry) Map() map[string]any {
	m := make(map[string]any, len(e.attrs))
	for _, a := range e.attrs {
		m[a.Name] = a.Value
	}
	return m
}
