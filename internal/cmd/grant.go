package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackm43/opsweep/internal/op"
)

var grantSafeCmd *SafeCommand

var grantCmd = &cobra.Command{
	Use:   "grant <group>",
	Short: "Grant a permission to a group on all vaults",
	Long: `Grant a permission level to a group on every accessible vault.
Vaults where the group already holds the permission are reported as
already satisfied and left untouched. A failure on one vault does not
stop the remaining vaults from being processed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, cfg, err := newManager(grantSafeCmd)
		if err != nil {
			return err
		}

		permission := grantSafeCmd.GetStringFlag("permission")
		if permission == "" {
			permission = cfg.DefaultPermission
		}
		if !op.IsKnownPermission(permission) {
			return fmt.Errorf("unknown permission %q; valid values: %v", permission, op.KnownPermissions)
		}

		return manager.Grant(cmd.Context(), args[0], permission)
	},
}

var revokeSafeCmd *SafeCommand

var revokeCmd = &cobra.Command{
	Use:   "revoke <group>",
	Short: "Revoke a permission from a group on all vaults",
	Long: `Revoke a permission level from a group on every vault that holds it.
Vaults where the group already lacks the permission are reported as
already satisfied. A failure on one vault does not stop the remaining
vaults from being processed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, cfg, err := newManager(revokeSafeCmd)
		if err != nil {
			return err
		}

		permission := revokeSafeCmd.GetStringFlag("permission")
		if permission == "" {
			permission = cfg.DefaultPermission
		}
		if !op.IsKnownPermission(permission) {
			return fmt.Errorf("unknown permission %q; valid values: %v", permission, op.KnownPermissions)
		}

		return manager.Revoke(cmd.Context(), args[0], permission)
	},
}

func init() {
	grantSafeCmd = NewSafeCommand(grantCmd)
	grantSafeCmd.RegisterStringFlag("permission", "", "permission level to grant (default from config)")

	revokeSafeCmd = NewSafeCommand(revokeCmd)
	revokeSafeCmd.RegisterStringFlag("permission", "", "permission level to revoke (default from config)")

	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(revokeCmd)
}
