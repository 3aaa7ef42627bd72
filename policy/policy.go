// Package policy evaluates request paths against file name extension rules.
//
// The extension of the last path segment is compared case-insensitively
// with each rule; the first matching rule decides. A path whose last
// segment has no extension matches the "." rule. Paths that match no rule
// are allowed unless unlisted extensions are disallowed.
package policy

import (
	"path"
	"strings"

	"github.com/reglet-dev/reglet-config-sdk/requestfiltering"
)

// Reasons reported in a Decision.
const (
	ReasonAllowedByRule   = "allowed by rule"
	ReasonDeniedByRule    = "denied by rule"
	ReasonUnlistedAllowed = "extension not listed"
	ReasonUnlistedDenied  = "extension not listed and unlisted extensions are denied"
)

// Decision is the outcome of evaluating one path.
type Decision struct {
	// Rule is the matching rule, nil when none matched.
	Rule      *requestfiltering.FileExtension
	Extension string
	Reason    string
	Allowed   bool
}

var _ Policy = (*ExtensionPolicy)(nil)

// ExtensionPolicy implements Policy.
type ExtensionPolicy struct {
	denialHandler DenialHandler
	allowUnlisted bool
}

// Option configures an ExtensionPolicy.
type Option func(*ExtensionPolicy)

// WithDenialHandler sets the handler called by CheckPath on denial.
func WithDenialHandler(h DenialHandler) Option {
	return func(p *ExtensionPolicy) { p.denialHandler = h }
}

// WithAllowUnlisted sets whether extensions without a rule are allowed.
func WithAllowUnlisted(allow bool) Option {
	return func(p *ExtensionPolicy) { p.allowUnlisted = allow }
}

// NewPolicy creates a policy that allows unlisted extensions by default.
func NewPolicy(opts ...Option) *ExtensionPolicy {
	p := &ExtensionPolicy{
		denialHandler: &NopDenialHandler{},
		allowUnlisted: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckPath evaluates the path and reports denials to the handler.
func (p *ExtensionPolicy) CheckPath(reqPath string, rules []requestfiltering.FileExtension) bool {
	d := p.EvaluatePath(reqPath, rules)
	if !d.Allowed && p.denialHandler != nil {
		p.denialHandler.OnDenial(reqPath, d)
	}
	return d.Allowed
}

// EvaluatePath returns the decision for reqPath.
func (p *ExtensionPolicy) EvaluatePath(reqPath string, rules []requestfiltering.FileExtension) Decision {
	ext := Extension(reqPath)
	for i := range rules {
		if !strings.EqualFold(rules[i].Extension, ext) {
			continue
		}
		rule := rules[i]
		if rule.Allowed {
			return Decision{Rule: &rule, Extension: ext, Allowed: true, Reason: ReasonAllowedByRule}
		}
		return Decision{Rule: &rule, Extension: ext, Allowed: false, Reason: ReasonDeniedByRule}
	}
	if p.allowUnlisted {
		return Decision{Extension: ext, Allowed: true, Reason: ReasonUnlistedAllowed}
	}
	return Decision{Extension: ext, Allowed: false, Reason: ReasonUnlistedDenied}
}

// Extension returns the extension of the last segment of reqPath, or "."
// when it has none. Query strings and fragments are ignored.
func Extension(reqPath string) string {
	if i := strings.IndexAny(reqPath, "?#"); i >= 0 {
		reqPath = reqPath[:i]
	}
	ext := path.Ext(path.Base(reqPath))
	if ext == "" {
		return "."
	}
	return ext
}
