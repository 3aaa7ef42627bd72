// Package help opens help resources in the user's browser.
package help

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/reglet-dev/reglet-config-sdk/feature"
)

var _ feature.HelpLauncher = (*BrowserLauncher)(nil)

// BrowserLauncher starts the platform URL opener and returns without
// waiting for it.
type BrowserLauncher struct {
	command func(rawURL string) (string, []string)
	start   func(cmd *exec.Cmd) error
	logger  *slog.Logger
}

// Option configures a BrowserLauncher.
type Option func(*BrowserLauncher)

// WithCommand overrides the opener command, e.g. a specific browser.
func WithCommand(name string, args ...string) Option {
	return func(l *BrowserLauncher) {
		l.command = func(rawURL string) (string, []string) {
			return name, append(append([]string(nil), args...), rawURL)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *BrowserLauncher) { l.logger = logger }
}

// NewBrowserLauncher creates a launcher for the current platform.
func NewBrowserLauncher(opts ...Option) *BrowserLauncher {
	l := &BrowserLauncher{
		command: platformCommand,
		start:   (*exec.Cmd).Start,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func platformCommand(rawURL string) (string, []string) {
	switch runtime.GOOS {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	case "darwin":
		return "open", []string{rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}

// Open implements feature.HelpLauncher. Only http and https URLs are opened.
func (l *BrowserLauncher) Open(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid help URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported help URL scheme %q", u.Scheme)
	}
	if u.User != nil {
		return fmt.Errorf("help URL must not carry credentials")
	}

	name, args := l.command(u.String())
	// The opener outlives the request, so it is not bound to ctx.
	cmd := exec.Command(name, args...)
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}
	l.logger.DebugContext(ctx, "opened help", "url", u.String(), "command", name)

	if cmd.Process != nil {
		go func() { _ = cmd.Wait() }()
	}
	return nil
}
