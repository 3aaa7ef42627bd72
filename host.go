// Package configsdk wires configuration features to a host: it opens the
// configuration document named by the host configuration and connects the
// terminal prompter, help launcher and logger to each feature.
package configsdk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/reglet-dev/reglet-config-sdk/configstore"
	"github.com/reglet-dev/reglet-config-sdk/configstore/yamlstore"
	"github.com/reglet-dev/reglet-config-sdk/feature"
	"github.com/reglet-dev/reglet-config-sdk/help"
	"github.com/reglet-dev/reglet-config-sdk/hostconfig"
	"github.com/reglet-dev/reglet-config-sdk/policy"
	"github.com/reglet-dev/reglet-config-sdk/prompt"
	"github.com/reglet-dev/reglet-config-sdk/requestfiltering"
	"github.com/reglet-dev/reglet-config-sdk/schema"
)

// Host holds the collaborators shared by the features it creates.
type Host struct {
	Config   hostconfig.Config
	Store    configstore.Accessor
	Schemas  *schema.Registry
	Prompter *prompt.TerminalPrompter
	Help     feature.HelpLauncher
	Policy   *policy.ExtensionPolicy
	Logger   *slog.Logger
}

// HostOption configures a Host.
type HostOption func(*hostOptions)

type hostOptions struct {
	logOutput io.Writer
	store     configstore.Accessor
}

// WithLogOutput sets where the host logger writes. Defaults to stderr.
func WithLogOutput(w io.Writer) HostOption {
	return func(o *hostOptions) { o.logOutput = w }
}

// WithStore uses accessor instead of opening the configured document.
func WithStore(accessor configstore.Accessor) HostOption {
	return func(o *hostOptions) { o.store = accessor }
}

// NewHost builds a Host from cfg.
func NewHost(cfg hostconfig.Config, opts ...HostOption) (*Host, error) {
	o := hostOptions{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger(o.logOutput)

	store := o.store
	if store == nil {
		scope, err := configstore.NewScope(cfg.Store.Scope...)
		if err != nil {
			return nil, err
		}
		s, err := yamlstore.Open(
			yamlstore.WithPath(cfg.Store.Path),
			yamlstore.WithScope(scope),
			yamlstore.WithSchemaConstraint(cfg.Store.SchemaConstraint),
		)
		if err != nil {
			return nil, fmt.Errorf("opening configuration store: %w", err)
		}
		logger.Debug("opened configuration store", "path", s.ConfigPath())
		store = s
	}

	promptOpts := []prompt.Option{prompt.WithAccessible(cfg.Prompt.Accessible)}
	if cfg.Prompt.Interactive != nil {
		promptOpts = append(promptOpts, prompt.WithInteractive(*cfg.Prompt.Interactive))
	}

	helpOpts := []help.Option{help.WithLogger(logger)}
	if len(cfg.Help.Command) > 0 {
		helpOpts = append(helpOpts, help.WithCommand(cfg.Help.Command[0], cfg.Help.Command[1:]...))
	}

	policyOpts := []policy.Option{policy.WithDenialHandler(&policy.SlogDenialHandler{Logger: logger})}
	if cfg.Filter.AllowUnlisted != nil {
		policyOpts = append(policyOpts, policy.WithAllowUnlisted(*cfg.Filter.AllowUnlisted))
	}

	return &Host{
		Config:   cfg,
		Store:    store,
		Schemas:  schema.NewRegistry(),
		Prompter: prompt.NewTerminalPrompter(promptOpts...),
		Help:     help.NewBrowserLauncher(helpOpts...),
		Policy:   policy.NewPolicy(policyOpts...),
		Logger:   logger,
	}, nil
}

// FileExtensions creates the File Name Extensions feature.
func (h *Host) FileExtensions() (*requestfiltering.FileExtensionsFeature, error) {
	codec, err := requestfiltering.NewExtensionCodec(h.Schemas)
	if err != nil {
		return nil, err
	}
	return requestfiltering.NewFileExtensionsFeature(h.Store, codec,
		feature.WithCreator[requestfiltering.FileExtension](h.Prompter),
		feature.WithConfirmer[requestfiltering.FileExtension](h.Prompter),
		feature.WithHelpLauncher[requestfiltering.FileExtension](h.Help),
		feature.WithLogger[requestfiltering.FileExtension](h.Logger),
		feature.WithMiddleware[requestfiltering.FileExtension](feature.LoggingMiddleware(h.Logger)),
	), nil
}

// CheckPath loads the current file name extension rules and reports
// whether reqPath passes them. Denials are logged.
func (h *Host) CheckPath(ctx context.Context, reqPath string) (bool, error) {
	f, err := h.FileExtensions()
	if err != nil {
		return false, err
	}
	if err := f.Load(ctx); err != nil {
		return false, err
	}
	return h.Policy.CheckPath(reqPath, f.Items()), nil
}
