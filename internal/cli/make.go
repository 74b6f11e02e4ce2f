package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/molgenis/commander/internal/client"
)

func newMakeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "make <user> <role>",
		Short: "Make a user a member of a role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, role := args[0], args[1]

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			api, err := a.loginClient(ctx)
			if err != nil {
				return err
			}
			if err := api.EnsurePrincipalExists(ctx, user, client.PrincipalUser); err != nil {
				return err
			}
			if err := api.MakeMember(ctx, user, role); err != nil {
				return err
			}
			a.successf(cmd, "Made %s a member of %s", user, strings.ToUpper(role))
			return nil
		},
	}
}
