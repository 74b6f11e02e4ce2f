package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a slog.Logger writing human-oriented text to stderr. Verbose
// lowers the level to Debug so request tracing becomes visible.
func New(subsystem string, verbose bool) *slog.Logger {
	return NewWithWriter(os.Stderr, subsystem, verbose)
}

// NewWithWriter is New with an explicit sink, for tests.
func NewWithWriter(w io.Writer, subsystem string, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("subsystem", subsystem)
}
