// Package prompt provides interactive terminal collaborators for features:
// a yes/no/cancel confirmation and a form collecting a new file name
// extension rule.
package prompt

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/reglet-dev/reglet-config-sdk/feature"
	"github.com/reglet-dev/reglet-config-sdk/requestfiltering"
)

// ErrNonInteractive is returned when a prompt is needed but stdin is not a terminal.
var ErrNonInteractive = errors.New("interactive prompt required but not running in a terminal")

// Ensure implementations satisfy the interfaces.
var (
	_ feature.Confirmer                               = (*TerminalPrompter)(nil)
	_ feature.Creator[requestfiltering.FileExtension] = (*TerminalPrompter)(nil)
)

const (
	OptionYes    = "Yes"
	OptionNo     = "No"
	OptionCancel = "Cancel"
)

// selectFunc asks the user to pick one of options and returns the choice.
type selectFunc func(ctx context.Context, title, description string, options []string) (string, error)

// inputFunc asks the user for one line of text checked by validate.
type inputFunc func(ctx context.Context, title, placeholder string, validate func(string) error) (string, error)

// TerminalPrompter provides interactive terminal prompting.
type TerminalPrompter struct {
	input       io.Reader
	output      io.Writer
	selectOne   selectFunc
	readLine    inputFunc
	interactive func() bool
	accessible  bool
}

// Option configures a TerminalPrompter.
type Option func(*TerminalPrompter)

// WithAccessible switches forms to huh's accessible (line based) mode.
func WithAccessible(accessible bool) Option {
	return func(p *TerminalPrompter) { p.accessible = accessible }
}

// WithIO sets the streams forms read from and write to.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(p *TerminalPrompter) {
		p.input = in
		p.output = out
	}
}

// WithInteractive overrides terminal detection.
func WithInteractive(interactive bool) Option {
	return func(p *TerminalPrompter) {
		p.interactive = func() bool { return interactive }
	}
}

// NewTerminalPrompter creates a new TerminalPrompter.
func NewTerminalPrompter(opts ...Option) *TerminalPrompter {
	p := &TerminalPrompter{
		input:  os.Stdin,
		output: os.Stderr,
	}
	p.selectOne = p.huhSelect
	p.readLine = p.huhInput
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsInteractive reports whether the prompter's input is a terminal.
// Inputs other than an *os.File are treated as non-interactive unless
// WithInteractive says otherwise.
func (p *TerminalPrompter) IsInteractive() bool {
	if p.interactive != nil {
		return p.interactive()
	}
	f, ok := p.input.(*os.File)
	if !ok {
		return false
	}
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Confirm implements feature.Confirmer. Aborting the form (ctrl+c, esc)
// counts as Cancel.
func (p *TerminalPrompter) Confirm(ctx context.Context, title, message string) (feature.Response, error) {
	if !p.IsInteractive() {
		return feature.ResponseCancel, ErrNonInteractive
	}

	selection, err := p.selectOne(ctx, title, message, []string{OptionYes, OptionNo, OptionCancel})
	if errors.Is(err, huh.ErrUserAborted) {
		return feature.ResponseCancel, nil
	}
	if err != nil {
		return feature.ResponseCancel, err
	}

	switch selection {
	case OptionYes:
		return feature.ResponseYes, nil
	case OptionNo:
		return feature.ResponseNo, nil
	default:
		return feature.ResponseCancel, nil
	}
}

// Create implements feature.Creator for file name extension rules. The
// polarity comes from the request; the user supplies the extension.
func (p *TerminalPrompter) Create(ctx context.Context, req feature.CreateRequest) (requestfiltering.FileExtension, bool, error) {
	if !p.IsInteractive() {
		return requestfiltering.FileExtension{}, false, ErrNonInteractive
	}

	title := "Add Deny File Name Extension"
	if req.Allowed {
		title = "Add Allow File Name Extension"
	}

	validate := func(s string) error {
		_, err := requestfiltering.NewFileExtension(s, req.Allowed)
		return err
	}

	ext, err := p.readLine(ctx, title, ".config", validate)
	if errors.Is(err, huh.ErrUserAborted) {
		return requestfiltering.FileExtension{}, false, nil
	}
	if err != nil {
		return requestfiltering.FileExtension{}, false, err
	}

	item, err := requestfiltering.NewFileExtension(ext, req.Allowed)
	if err != nil {
		return requestfiltering.FileExtension{}, false, err
	}
	return item, true, nil
}

func (p *TerminalPrompter) form(group *huh.Group) *huh.Form {
	return huh.NewForm(group).
		WithAccessible(p.accessible).
		WithInput(p.input).
		WithOutput(p.output)
}

func (p *TerminalPrompter) huhSelect(ctx context.Context, title, description string, options []string) (string, error) {
	var selection string

	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o, o))
	}

	err := p.form(huh.NewGroup(
		huh.NewSelect[string]().
			Title(title).
			Description(description).
			Options(opts...).
			Value(&selection),
	)).RunWithContext(ctx)
	if err != nil {
		return "", err
	}
	return selection, nil
}

func (p *TerminalPrompter) huhInput(ctx context.Context, title, placeholder string, validate func(string) error) (string, error) {
	var value string

	err := p.form(huh.NewGroup(
		huh.NewInput().
			Title(title).
			Description("File name extension").
			Placeholder(placeholder).
			Validate(validate).
			Value(&value),
	)).RunWithContext(ctx)
	if err != nil {
		return "", err
	}
	return value, nil
}
