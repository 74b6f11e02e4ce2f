// Package script executes mcmd script files: plain text, one command line per
// line, run sequentially through the same dispatch path as interactive
// invocation.
package script

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/shlex"
)

// Error reports invalid script content, such as a script trying to run
// another script.
type Error struct {
	Line   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Line)
}

// Dispatch executes one tokenized command line.
type Dispatch func(args []string) error

// Recorder receives each executed line, normally the history log.
type Recorder interface {
	Write(line string) error
}

// RunCommandName is the CLI command that starts a script. A script may not
// contain it: nested script invocation is disallowed categorically, even for
// a different script file.
const RunCommandName = "run"

// Runner executes script files line by line, in file order.
type Runner struct {
	dispatch Dispatch
	recorder Recorder
	logger   *slog.Logger
}

func NewRunner(dispatch Dispatch, recorder Recorder, logger *slog.Logger) *Runner {
	return &Runner{dispatch: dispatch, recorder: recorder, logger: logger}
}

// Run reads the script at path and dispatches every line in order. With
// ignoreErrors set, a failing line is logged and the next line still runs;
// without it, the first failure halts the script. A nested run command fails
// the whole script either way.
func (r *Runner) Run(path string, ignoreErrors bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading script: %w", err)
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	for _, line := range lines {
		tokens, err := shlex.Split(line)
		if err != nil {
			err = fmt.Errorf("parsing line %q: %w", line, err)
			if ignoreErrors {
				r.logger.Error("script line failed", "error", err)
				continue
			}
			return err
		}
		if len(tokens) == 0 {
			err := fmt.Errorf("empty command line")
			if ignoreErrors {
				r.logger.Error("script line failed", "error", err)
				continue
			}
			return err
		}
		if tokens[0] == RunCommandName {
			return &Error{Line: line, Reason: "can't use the run command in a script"}
		}

		if r.recorder != nil {
			if err := r.recorder.Write(line); err != nil {
				r.logger.Error("history write failed", "error", err)
			}
		}

		if err := r.dispatch(tokens); err != nil {
			if ignoreErrors {
				r.logger.Error("script line failed", "line", line, "error", err)
				continue
			}
			return err
		}
	}
	return nil
}
