package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add users and groups",
	}
	cmd.AddCommand(newAddUserCmd(a))
	cmd.AddCommand(newAddGroupCmd(a))
	return cmd
}

func newAddUserCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "user <username>",
		Short: "Add an active user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			api, err := a.loginClient(ctx)
			if err != nil {
				return err
			}
			if err := api.AddUser(ctx, args[0]); err != nil {
				return err
			}
			a.successf(cmd, "Added user %s", args[0])
			return nil
		},
	}
}

func newAddGroupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "group <name>",
		Short: "Add a security group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			api, err := a.loginClient(ctx)
			if err != nil {
				return err
			}
			if err := api.AddGroup(ctx, args[0]); err != nil {
				return err
			}
			a.successf(cmd, "Added group %s", args[0])
			return nil
		},
	}
}
