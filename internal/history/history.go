// Package history appends executed command lines to a plain-text log. The log
// is write-only from the tool's point of view; nothing ever reads it back.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Log appends command lines to a file.
type Log struct {
	path string
}

// New creates a history log at the given path. The parent directory is
// created on first write.
func New(path string) *Log {
	return &Log{path: path}
}

// Write appends one executed command line.
func (l *Log) Write(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer file.Close()
	if _, err := file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return nil
}
