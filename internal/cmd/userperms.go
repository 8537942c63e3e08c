package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackm43/opsweep/internal/core"
	"github.com/jackm43/opsweep/internal/op"
)

var userPermsSafeCmd *SafeCommand

var userPermsCmd = &cobra.Command{
	Use:   "user-perms [vault]",
	Short: "Grant or revoke permissions for a vault's users",
	Long: `Grant or revoke a set of permissions for the users of a vault. With no
vault argument, every vault listed as holding the permissions is
processed. Only users whose current permissions differ from the desired
state are touched; per-user failures are reported and the rest continue.

Examples:
  opsweep user-perms <vault-id> --mode revoke --permissions export_items
  opsweep user-perms --mode revoke --permissions export_items
  opsweep user-perms <vault-id> --mode grant --permissions view_items,copy_and_share_items
  opsweep user-perms <vault-id> --mode revoke --permissions export_items --user alice@example.com`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, _, err := newManager(userPermsSafeCmd)
		if err != nil {
			return err
		}

		mode := core.Mode(userPermsSafeCmd.GetStringFlag("mode"))
		if !mode.Valid() {
			return fmt.Errorf("invalid mode %q; must be grant or revoke", mode)
		}

		permissions := userPermsSafeCmd.GetStringSliceFlag("permissions")
		if len(permissions) == 0 {
			return fmt.Errorf("--permissions is required")
		}
		for _, permission := range permissions {
			if !op.IsKnownPermission(permission) {
				return fmt.Errorf("unknown permission %q; valid values: %v", permission, op.KnownPermissions)
			}
		}

		onlyUser := userPermsSafeCmd.GetStringFlag("user")

		vaultID := ""
		if len(args) > 0 {
			vaultID = args[0]
		}

		return manager.UserPerms(cmd.Context(), vaultID, permissions, mode, onlyUser)
	},
}

func init() {
	userPermsSafeCmd = NewSafeCommand(userPermsCmd)
	userPermsSafeCmd.RegisterStringFlag("mode", "", "grant or revoke (required)")
	userPermsSafeCmd.RegisterStringSliceFlag("permissions", nil, "comma separated permission levels (required)")
	userPermsSafeCmd.RegisterStringFlag("user", "", "restrict the update to a single user (ID or email)")

	rootCmd.AddCommand(userPermsCmd)
}
