// Package cli implements the mcmd command tree. Script execution re-enters
// the same tree, so every command behaves identically whether it was typed
// interactively or read from a script file.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/molgenis/commander/internal/client"
	"github.com/molgenis/commander/internal/config"
	"github.com/molgenis/commander/internal/history"
	"github.com/molgenis/commander/internal/script"
	"github.com/molgenis/commander/internal/shared/logging"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// RenderError formats an error for terminal display.
func RenderError(err error) string {
	return errorStyle.Render(err.Error())
}

// Execute runs the Cobra-based CLI entry point.
func Execute() error {
	a := newApp()
	if len(os.Args) > 1 {
		a.pendingHistory = strings.Join(os.Args[1:], " ")
	}
	return a.newRootCmd().Execute()
}

// app carries the state shared by all commands: configuration, logger, the
// API client, and the history log. One app serves both an interactive
// invocation and every line of a script.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
	api    *client.Client
	hist   *history.Log

	// pendingHistory is the raw interactive command line, written to the
	// history log before execution. Script lines are recorded by the script
	// runner instead.
	pendingHistory string
}

func newApp() *app {
	return &app{configPath: envOrDefault("MCMD_CONFIG", "")}
}

func (a *app) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mcmd",
		Short:         "MOLGENIS command-line commander",
		Long:          "mcmd manages users, groups, permissions and data imports on a MOLGENIS server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.preRun(cmd)
		},
	}

	// defaults repeat the current values so a script dispatch, which builds a
	// fresh command tree, inherits the interactive invocation's flags
	cmd.PersistentFlags().StringVar(&a.configPath, "config", a.configPath, "path to the mcmd config file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", a.verbose, "enable debug logging")

	cmd.AddCommand(newVersionCmd(a))
	cmd.AddCommand(newPingCmd(a))
	cmd.AddCommand(newGiveCmd(a))
	cmd.AddCommand(newAddCmd(a))
	cmd.AddCommand(newMakeCmd(a))
	cmd.AddCommand(newImportCmd(a))
	cmd.AddCommand(newDeleteCmd(a))
	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	return cmd
}

func (a *app) preRun(cmd *cobra.Command) error {
	if a.logger == nil {
		a.logger = logging.New("mcmd", a.verbose)
	}
	if cmd.Name() == "init" || cmd.Name() == "help" {
		return nil
	}
	if a.cfg == nil {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = &cfg
		a.hist = history.New(cfg.History.Path)
	}
	if a.pendingHistory != "" {
		// a run invocation is never recorded; clear it either way so script
		// dispatch, which re-enters preRun, cannot write the stale line
		if cmd.Name() != script.RunCommandName {
			if err := a.hist.Write(a.pendingHistory); err != nil {
				a.logger.Error("history write failed", "error", err)
			}
		}
		a.pendingHistory = ""
	}
	return nil
}

// client returns the shared API client, creating it on first use. When the
// config carries no password, it is read from the terminal.
func (a *app) client() (*client.Client, error) {
	if a.api != nil {
		return a.api, nil
	}
	cfg := *a.cfg
	if cfg.Auth.Password == "" {
		password, err := promptPassword(cfg.Auth.Username)
		if err != nil {
			return nil, err
		}
		cfg.Auth.Password = password
	}
	api, err := client.New(cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.api = api
	return api, nil
}

// loginClient returns the shared API client with a fresh session.
func (a *app) loginClient(ctx context.Context) (*client.Client, error) {
	api, err := a.client()
	if err != nil {
		return nil, err
	}
	if err := api.Auth().Login(ctx); err != nil {
		return nil, err
	}
	return api, nil
}

// dispatch executes one tokenized script line through a fresh command tree
// sharing this app's state.
func (a *app) dispatch(args []string) error {
	root := a.newRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func (a *app) successf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf(format, args...)))
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
