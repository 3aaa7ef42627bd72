// Package schema implements a registry of JSON schemas used to check the
// shape of raw configuration entries before they are converted to items.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrUnknownKind is returned when validating against an unregistered kind.
var ErrUnknownKind = errors.New("unknown entry kind")

// Registry implements EntryRegistry using in-memory storage.
type Registry struct {
	schemas   map[string]string
	compiled  map[string]*jsonschema.Schema
	mu        sync.RWMutex
	reflector *invopop.Reflector
}

// RegistryOption configures the Registry.
type RegistryOption func(*Registry)

// WithAdditionalProperties controls whether reflected schemas accept
// attributes that the model does not declare.
func WithAdditionalProperties(allow bool) RegistryOption {
	return func(r *Registry) {
		r.reflector.AllowAdditionalProperties = allow
	}
}

// NewRegistry creates a new entry schema registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		schemas:   make(map[string]string),
		compiled:  make(map[string]*jsonschema.Schema),
		reflector: new(invopop.Reflector),
	}
	r.reflector.ExpandedStruct = true
	r.reflector.Anonymous = true

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a schema for an entry kind.
// model can be a Go struct (to generate schema) or a raw JSON schema string/map.
func (r *Registry) Register(kind string, model interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[kind]; exists {
		return fmt.Errorf("entry kind already registered: %s", kind)
	}

	schemaStr, err := r.render(model)
	if err != nil {
		return err
	}

	compiler := jsonschema.NewCompiler()
	url := kind + ".schema.json"
	if err := compiler.AddResource(url, strings.NewReader(schemaStr)); err != nil {
		return fmt.Errorf("failed to load schema for %s: %w", kind, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("failed to compile schema for %s: %w", kind, err)
	}

	r.schemas[kind] = schemaStr
	r.compiled[kind] = compiled
	return nil
}

func (r *Registry) render(model interface{}) (string, error) {
	switch v := model.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case map[string]interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal schema map: %w", err)
		}
		return string(b), nil
	}

	t := reflect.TypeOf(model)
	if t == nil || (t.Kind() != reflect.Struct && !(t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct)) {
		return "", fmt.Errorf("unsupported schema model %T", model)
	}

	s := r.reflector.Reflect(model)
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal generated schema: %w", err)
	}
	return string(b), nil
}

// GetSchema retrieves the JSON Schema for an entry kind.
func (r *Registry) GetSchema(kind string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[kind]
	return s, ok
}

// Validate checks entry against the schema registered for kind.
// Values are normalized through JSON so YAML scalars validate the same
// way as their JSON equivalents.
func (r *Registry) Validate(kind string, entry map[string]any) error {
	r.mu.RLock()
	compiled, ok := r.compiled[kind]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("entry is not representable as JSON: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("entry is not representable as JSON: %w", err)
	}

	return compiled.Validate(doc)
}

// List returns all registered entry kinds in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
