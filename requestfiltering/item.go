// Package requestfiltering provides the File Name Extensions feature: the
// allow/deny rules stored in the fileExtensions collection of the
// system.webServer/security/requestFiltering section.
package requestfiltering

import (
	"fmt"
	"strings"
)

// FileExtension is one file name extension rule.
type FileExtension struct {
	// Extension is the rule's identity, e.g. ".config".
	Extension string
	Allowed   bool
}

// NewFileExtension trims ext and adds a leading dot when it is missing.
func NewFileExtension(ext string, allowed bool) (FileExtension, error) {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return FileExtension{}, fmt.Errorf("file name extension cannot be empty")
	}
	if strings.ContainsAny(ext, `/\`) {
		return FileExtension{}, fmt.Errorf("file name extension %q cannot contain path separators", ext)
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return FileExtension{Extension: ext, Allowed: allowed}, nil
}

// String returns the rule the way the management UI lists it.
func (f FileExtension) String() string {
	if f.Allowed {
		return f.Extension + " (allowed)"
	}
	return f.Extension + " (denied)"
}
