package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		fromURL string
		pkg     string
		action  string
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a data file, or trigger an import from a URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (fromURL == "") {
				return fmt.Errorf("provide either a file or --url")
			}

			params := url.Values{}
			if pkg != "" {
				params.Set("packageId", pkg)
			}
			if action != "" {
				params.Set("action", action)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			api, err := a.loginClient(ctx)
			if err != nil {
				return err
			}

			if fromURL != "" {
				params.Set("url", fromURL)
				if err := api.ImportByURL(ctx, params); err != nil {
					return err
				}
				a.successf(cmd, "Import of %s started", fromURL)
				return nil
			}

			path, err := resolveImportFile(args[0])
			if err != nil {
				return err
			}
			if err := api.ImportFile(ctx, path, params); err != nil {
				return err
			}
			a.successf(cmd, "Imported %s", filepath.Base(path))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromURL, "url", "", "import from a remote URL instead of a local file")
	cmd.Flags().StringVar(&pkg, "package", "", "the package to import into")
	cmd.Flags().StringVar(&action, "action", "", "import action (add, add_update_existing, update)")
	return cmd
}

// resolveImportFile accepts an absolute path or a path relative to the
// working directory.
func resolveImportFile(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("import file: %w", err)
		}
		return name, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path := filepath.Join(wd, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("import file: %w", err)
	}
	return path, nil
}
