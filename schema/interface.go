package schema

// EntryRegistry manages JSON schemas for configuration entry kinds.
type EntryRegistry interface {
	// Register adds a schema for an entry kind (e.g. "fileExtension").
	// model can be a struct (to generate schema) or a JSON schema string/map.
	Register(kind string, model interface{}) error

	// GetSchema returns the JSON schema for an entry kind.
	GetSchema(kind string) (string, bool)

	// Validate checks a raw entry against the schema registered for kind.
	Validate(kind string, entry map[string]any) error

	// List returns all registered entry kinds.
	List() []string
}
