package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/molgenis/commander/internal/client"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity-type> [id...]",
		Short: "Delete rows of an entity type, or all of its data",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, ids := args[0], args[1:]

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			api, err := a.loginClient(ctx)
			if err != nil {
				return err
			}
			if err := api.EnsureResourceExists(ctx, entity, client.EntityType); err != nil {
				return err
			}

			if len(ids) > 0 {
				if err := api.DeleteRows(ctx, entity, ids); err != nil {
					return err
				}
				a.successf(cmd, "Deleted %d row(s) from %s", len(ids), entity)
				return nil
			}

			if err := api.DeleteAllRows(ctx, entity); err != nil {
				return err
			}
			a.successf(cmd, "Deleted all data from %s", entity)
			return nil
		},
	}
}
