package policy

import "github.com/reglet-dev/reglet-config-sdk/requestfiltering"

// Policy enforces file name extension rules against request paths.
type Policy interface {
	CheckPath(path string, rules []requestfiltering.FileExtension) bool

	// EvaluatePath returns the decision without side effects (like logging denials).
	EvaluatePath(path string, rules []requestfiltering.FileExtension) Decision
}

// DenialHandler is called when a policy check denies a request.
type DenialHandler interface {
	// OnDenial is called when a request path is denied.
	OnDenial(path string, decision Decision)
}
