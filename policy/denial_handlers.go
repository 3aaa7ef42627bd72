package policy

import (
	"fmt"
	"log/slog"
	"os"
)

// Ensure implementations satisfy the interface.
var (
	_ DenialHandler = (*StderrDenialHandler)(nil)
	_ DenialHandler = (*NopDenialHandler)(nil)
	_ DenialHandler = (*SlogDenialHandler)(nil)
)

// StderrDenialHandler logs denials to stderr.
type StderrDenialHandler struct{}

func (h *StderrDenialHandler) OnDenial(path string, d Decision) {
	fmt.Fprintf(os.Stderr, "Request Denied [%s]: %s (Reason: %s)\n", d.Extension, path, d.Reason)
}

// NopDenialHandler does nothing.
type NopDenialHandler struct{}

func (h *NopDenialHandler) OnDenial(path string, d Decision) {}

// SlogDenialHandler logs denials through a structured logger.
type SlogDenialHandler struct {
	Logger *slog.Logger
}

func (h *SlogDenialHandler) OnDenial(path string, d Decision) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("request denied by file extension filtering",
		"path", path,
		"extension", d.Extension,
		"reason", d.Reason)
}
