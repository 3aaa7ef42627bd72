// Package yamlstore provides a file-backed configstore.Accessor over a
// hierarchical YAML document.
//
// Section paths are "/"-separated mapping keys from the document root. A
// collection is a sequence of mappings stored under a key of its section:
//
//	schemaVersion: 1.0.0
//	system.webServer:
//	  security:
//	    requestFiltering:
//	      fileExtensions:
//	        - fileExtension: .config
//	          allowed: false
package yamlstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/reglet-config-sdk/configstore"
)

// SchemaVersionKey is the root key holding the document schema version.
const SchemaVersionKey = "schemaVersion"

var _ configstore.Accessor = (*Store)(nil)

// storeConfig holds configuration for the Store.
type storeConfig struct {
	path       string
	scope      configstore.Scope
	constraint string
	dirPerm    os.FileMode
	filePerm   os.FileMode
}

func defaultStoreConfig() storeConfig {
	return storeConfig{
		path:       filepath.Join(os.Getenv("HOME"), ".reglet", "applicationHost.yaml"),
		constraint: "^1",
		dirPerm:    0o755,
		filePerm:   0o600,
	}
}

// Option configures a Store instance.
type Option func(*storeConfig)

// WithPath sets the path to the configuration document.
func WithPath(path string) Option {
	return func(c *storeConfig) {
		if path != "" {
			c.path = path
		}
	}
}

// WithScope restricts which sections are visible.
func WithScope(scope configstore.Scope) Option {
	return func(c *storeConfig) { c.scope = scope }
}

// WithSchemaConstraint sets the semver constraint a document's
// schemaVersion must satisfy.
func WithSchemaConstraint(constraint string) Option {
	return func(c *storeConfig) {
		if constraint != "" {
			c.constraint = constraint
		}
	}
}

// WithFilePermissions sets the file permissions used when writing.
func WithFilePermissions(perm os.FileMode) Option {
	return func(c *storeConfig) { c.filePerm = perm }
}

// WithDirPermissions sets the permissions of a created parent directory.
func WithDirPermissions(perm os.FileMode) Option {
	return func(c *storeConfig) { c.dirPerm = perm }
}

// Store is a YAML configuration document held in memory and written back
// to disk on every mutation.
type Store struct {
	config storeConfig
	doc    yaml.MapSlice
	mu     sync.Mutex
}

// Open reads the document at the configured path. A missing file yields an
// empty document in which every section is absent.
func Open(opts ...Option) (*Store, error) {
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Store{config: cfg}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload discards in-memory state and re-reads the document.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.config.path)
	if os.IsNotExist(err) {
		s.mu.Lock()
		s.doc = nil
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return fmt.Errorf("failed to parse configuration %s: %w", s.config.path, err)
	}
	if err := checkSchemaVersion(doc, s.config.constraint); err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// ConfigPath returns the path to the backing document.
func (s *Store) ConfigPath() string {
	return s.config.path
}

// Collection implements configstore.Accessor.
func (s *Store) Collection(sectionPath, name string) (configstore.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.scope.Contains(sectionPath) {
		return nil, &configstore.NotFoundError{Section: sectionPath}
	}
	section, ok := lookupSection(s.doc, splitSection(sectionPath))
	if !ok {
		return nil, &configstore.NotFoundError{Section: sectionPath}
	}
	v, ok := lookupKey(section, name)
	if !ok {
		return nil, &configstore.NotFoundError{Section: sectionPath, Collection: name}
	}
	c := &collection{store: s, section: sectionPath, keys: append(splitSection(sectionPath), name)}
	if _, err := c.asSequence(v); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeDocument(data []byte) (yaml.MapSlice, error) {
	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	doc, ok := raw.(yaml.MapSlice)
	if !ok {
		return nil, fmt.Errorf("document root must be a mapping, got %T", raw)
	}
	return doc, nil
}

func checkSchemaVersion(doc yaml.MapSlice, constraint string) error {
	raw, ok := lookupKey(doc, SchemaVersionKey)
	if !ok {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid schema constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(fmt.Sprint(raw))
	if err != nil {
		return fmt.Errorf("invalid %s %v: %w", SchemaVersionKey, raw, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("unsupported %s %s (want %s)", SchemaVersionKey, v, constraint)
	}
	return nil
}

func splitSection(sectionPath string) []string {
	return strings.Split(strings.Trim(sectionPath, "/"), "/")
}

func lookupKey(m yaml.MapSlice, key string) (any, bool) {
	for _, item := range m {
		if fmt.Sprint(item.Key) == key {
			return item.Value, true
		}
	}
	return nil, false
}

func lookupSection(doc yaml.MapSlice, keys []string) (yaml.MapSlice, bool) {
	cur := doc
	for _, k := range keys {
		v, ok := lookupKey(cur, k)
		if !ok {
			return nil, false
		}
		switch next := v.(type) {
		case yaml.MapSlice:
			cur = next
		case nil:
			cur = nil
		default:
			return nil, false
		}
	}
	return cur, true
}

// setPath returns a copy of m with the value at keys replaced.
// Every key along the path must already exist.
func setPath(m yaml.MapSlice, keys []string, value any) yaml.MapSlice {
	out := make(yaml.MapSlice, len(m))
	copy(out, m)
	for i, item := range out {
		if fmt.Sprint(item.Key) != keys[0] {
			continue
		}
		if len(keys) == 1 {
			out[i].Value = value
		} else {
			child, _ := item.Value.(yaml.MapSlice)
			out[i].Value = setPath(child, keys[1:], value)
		}
		break
	}
	return out
}

// commit persists next and makes it the current document. The in-memory
// document is left untouched when the write fails. Caller holds s.mu.
func (s *Store) commit(next yaml.MapSlice) error {
	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	dir := filepath.Dir(s.config.path)
	if err := os.MkdirAll(dir, s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.config.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	if err := tmp.Chmod(s.config.filePerm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.config.path); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	s.doc = next
	return nil
}
