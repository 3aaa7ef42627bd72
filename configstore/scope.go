package configstore

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Scope limits which section paths are visible. Patterns use doublestar
// syntax over "/"-separated section paths, e.g. "system.webServer/**".
// An empty Scope admits every section.
type Scope struct {
	patterns []string
}

// NewScope validates the patterns and returns a Scope.
func NewScope(patterns ...string) (Scope, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return Scope{}, fmt.Errorf("invalid scope pattern %q", p)
		}
	}
	return Scope{patterns: append([]string(nil), patterns...)}, nil
}

// Contains reports whether sectionPath is visible in the scope.
func (s Scope) Contains(sectionPath string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	for _, p := range s.patterns {
		if ok, _ := doublestar.Match(p, sectionPath); ok {
			return true
		}
	}
	return false
}

// Patterns returns the scope's patterns.
func (s Scope) Patterns() []string {
	return append([]string(nil), s.patterns...)
}
