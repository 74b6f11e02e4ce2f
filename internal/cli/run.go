package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/molgenis/commander/internal/script"
)

func newRunCmd(a *app) *cobra.Command {
	var ignoreErrors bool

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run an mcmd script",
		Long:  "Runs a script of mcmd command lines, in file order. Scripts may not run other scripts.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := resolveScript(a.cfg.Script.Root, args[0])
			runner := script.NewRunner(a.dispatch, a.hist, a.logger)
			return runner.Run(path, ignoreErrors)
		},
	}

	cmd.Flags().BoolVarP(&ignoreErrors, "ignore-errors", "i", false, "let the script continue when a command fails")
	return cmd
}

// resolveScript prefers a path that exists as given; otherwise the name is
// looked up under the configured scripts folder.
func resolveScript(root, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return filepath.Join(root, name)
}
