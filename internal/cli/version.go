package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// Version is the mcmd client version.
const Version = "1.2.0"

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client and server versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "mcmd %s\n", Version)

			api, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			server, err := api.Version(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "MOLGENIS %s\n", server)
			return nil
		},
	}
}

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured MOLGENIS server is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			if _, err := api.Version(ctx); err != nil {
				return fmt.Errorf("%s is not reachable: %w", a.cfg.Host.URL, err)
			}
			a.successf(cmd, "%s is up", a.cfg.Host.URL)
			return nil
		},
	}
}
