// Package hostconfig loads the host configuration file that tells the SDK
// where the configuration document lives and how to talk to the user.
package hostconfig

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the host configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	Prompt PromptConfig `yaml:"prompt"`
	Help   HelpConfig   `yaml:"help"`
	Filter FilterConfig `yaml:"filter"`
}

// StoreConfig locates the configuration document.
type StoreConfig struct {
	Path             string   `yaml:"path"`
	SchemaConstraint string   `yaml:"schema_constraint,omitempty"`
	Scope            []string `yaml:"scope,omitempty"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PromptConfig configures terminal prompts.
type PromptConfig struct {
	// Interactive overrides terminal detection when set.
	Interactive *bool `yaml:"interactive,omitempty"`
	Accessible  bool  `yaml:"accessible"`
}

// HelpConfig configures how help links are opened.
type HelpConfig struct {
	// Command replaces the platform opener; the URL is appended.
	Command []string `yaml:"command,omitempty"`
}

// FilterConfig configures request path evaluation.
type FilterConfig struct {
	// AllowUnlisted decides paths whose extension has no rule. Unset means allowed.
	AllowUnlisted *bool `yaml:"allow_unlisted,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Path:             filepath.Join(os.Getenv("HOME"), ".reglet", "applicationHost.yaml"),
			SchemaConstraint: "^1",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration at path over the defaults. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read host config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse host config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid host config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	level := slog.LevelInfo
	if l.Level == "" {
		return level, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("unknown log.level %q", l.Level)
	}
	return level, nil
}

// Logger builds a logger writing to w at the configured level and format.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Log.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
