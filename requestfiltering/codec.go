package requestfiltering

import (
	"fmt"

	"github.com/reglet-dev/reglet-config-sdk/configstore"
	"github.com/reglet-dev/reglet-config-sdk/schema"
)

const (
	// EntryKind is the schema registry kind for fileExtensions entries.
	EntryKind = "fileExtension"

	attrExtension = "fileExtension"
	attrAllowed   = "allowed"
)

// fileExtensionEntry is the persisted shape of a rule. allowed defaults to
// true when absent.
type fileExtensionEntry struct {
	FileExtension string `json:"fileExtension" jsonschema:"minLength=1"`
	Allowed       *bool  `json:"allowed,omitempty"`
}

// ExtensionCodec converts fileExtensions entries to FileExtension items.
type ExtensionCodec struct {
	schemas schema.EntryRegistry
}

// NewExtensionCodec creates a codec validating entries against the
// fileExtension schema registered in schemas. A nil registry gets a
// private one.
func NewExtensionCodec(schemas schema.EntryRegistry) (*ExtensionCodec, error) {
	if schemas == nil {
		schemas = schema.NewRegistry()
	}
	if _, ok := schemas.GetSchema(EntryKind); !ok {
		if err := schemas.Register(EntryKind, fileExtensionEntry{}); err != nil {
			return nil, fmt.Errorf("registering %s schema: %w", EntryKind, err)
		}
	}
	return &ExtensionCodec{schemas: schemas}, nil
}

// MustNewExtensionCodec creates an ExtensionCodec or panics
func MustNewExtensionCodec() *ExtensionCodec {
	c, err := NewExtensionCodec(nil)
	if err != nil {
		panic(err)
	}
	return c
}

// FromEntry converts a raw entry, rejecting entries that do not match the
// fileExtension schema.
func (c *ExtensionCodec) FromEntry(entry configstore.Entry) (FileExtension, error) {
	if err := c.schemas.Validate(EntryKind, entry.Map()); err != nil {
		return FileExtension{}, fmt.Errorf("invalid %s entry: %w", EntryKind, err)
	}

	raw, _ := entry.Get(attrExtension)
	ext, ok := raw.(string)
	if !ok {
		return FileExtension{}, fmt.Errorf("invalid %s entry: %s must be a string, got %T", EntryKind, attrExtension, raw)
	}
	item := FileExtension{Extension: ext, Allowed: true}
	if raw, ok := entry.Get(attrAllowed); ok {
		allowed, ok := raw.(bool)
		if !ok {
			return FileExtension{}, fmt.Errorf("invalid %s entry: %s must be a boolean, got %T", EntryKind, attrAllowed, raw)
		}
		item.Allowed = allowed
	}
	return item, nil
}

// ToEntry converts an item to its persisted form.
func (c *ExtensionCodec) ToEntry(item FileExtension) configstore.Entry {
	return configstore.NewEntry(
		configstore.Attribute{Name: attrExtension, Value: item.Extension},
		configstore.Attribute{Name: attrAllowed, Value: item.Allowed},
	)
}

// Key returns the rule's extension.
func (c *ExtensionCodec) Key(item FileExtension) string {
	return item.Extension
}
