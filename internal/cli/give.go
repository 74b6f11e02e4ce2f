package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/molgenis/commander/internal/client"
)

var permissions = map[string]bool{
	"none":      true,
	"count":     true,
	"read":      true,
	"write":     true,
	"writemeta": true,
}

func newGiveCmd(a *app) *cobra.Command {
	var (
		asUser     bool
		asRole     bool
		entityType bool
		pkg        bool
		plugin     bool
		theme      bool
	)

	cmd := &cobra.Command{
		Use:   "give <principal> <permission> <resource>",
		Short: "Give a user or role a permission on a resource",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, permission, resource := args[0], args[1], args[2]
			if !permissions[permission] {
				return fmt.Errorf("invalid permission %q (choose from none, count, read, write, writemeta)", permission)
			}
			if asUser && asRole {
				return fmt.Errorf("--user and --role are mutually exclusive")
			}
			principalType := client.PrincipalUser
			if asRole {
				principalType = client.PrincipalRole
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			api, err := a.loginClient(ctx)
			if err != nil {
				return err
			}
			if err := api.EnsurePrincipalExists(ctx, principal, principalType); err != nil {
				return err
			}

			resourceType, err := pickResourceType(ctx, api, resource, entityType, pkg, plugin, theme)
			if err != nil {
				return err
			}
			if err := api.EnsureResourceExists(ctx, resource, resourceType); err != nil {
				return err
			}
			if err := api.Grant(ctx, principalType, principal, resourceType, resource, permission); err != nil {
				return err
			}
			a.successf(cmd, "Gave %s %s %s permission on %s %s", principalType, principal, permission, resourceType.Label(), resource)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asUser, "user", "u", false, "the principal is a user (default)")
	cmd.Flags().BoolVarP(&asRole, "role", "r", false, "the principal is a role")
	cmd.Flags().BoolVar(&entityType, "entity-type", false, "the resource is an entity type")
	cmd.Flags().BoolVar(&pkg, "package", false, "the resource is a package")
	cmd.Flags().BoolVar(&plugin, "plugin", false, "the resource is a plugin")
	cmd.Flags().BoolVar(&theme, "theme", false, "the resource is a stylesheet")
	return cmd
}

// pickResourceType resolves the resource type from the flags, or probes the
// server when no flag was given.
func pickResourceType(ctx context.Context, api *client.Client, id string, entityType, pkg, plugin, theme bool) (client.ResourceType, error) {
	flagged := map[client.ResourceType]bool{
		client.EntityType: entityType,
		client.Package:    pkg,
		client.Plugin:     plugin,
		client.Theme:      theme,
	}
	var picked []client.ResourceType
	for t, set := range flagged {
		if set {
			picked = append(picked, t)
		}
	}
	switch len(picked) {
	case 1:
		return picked[0], nil
	case 0:
		return detectResourceType(ctx, api, id)
	default:
		return 0, fmt.Errorf("choose a single resource type flag")
	}
}

func detectResourceType(ctx context.Context, api *client.Client, id string) (client.ResourceType, error) {
	for _, t := range []client.ResourceType{client.EntityType, client.Package, client.Plugin, client.Theme} {
		exists, err := api.ResourceExists(ctx, id, t)
		if err != nil {
			return 0, err
		}
		if exists {
			return t, nil
		}
	}
	return 0, &client.NotFoundError{Label: "resource", ID: id}
}
