package prompt

import "context"

// WithSelect replaces the huh select form in tests.
func WithSelect(fn func(ctx context.Context, title, description string, options []string) (string, error)) Option {
	return func(p *TerminalPrompter) { p.selectOne = fn }
}

// WithLineInput replaces the huh input form in tests.
func WithLineInput(fn func(ctx context.Context, title, placeholder string, validate func(string) error) (string, error)) Option {
	return func(p *TerminalPrompter) { p.readLine = fn }
}
