package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackm43/opsweep/internal/core"
	"github.com/jackm43/opsweep/internal/op"
)

var planSafeCmd *SafeCommand

var planCmd = &cobra.Command{
	Use:   "plan <group>",
	Short: "Show what a grant or revoke run would change",
	Long: `Compute and display the per-vault changes a reconciliation run
would make, without applying any of them. For each vault this shows
whether the group would be granted, revoked, or skipped because it is
already in the desired state.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, cfg, err := newManager(planSafeCmd)
		if err != nil {
			return err
		}

		mode := core.Mode(planSafeCmd.GetStringFlag("mode"))
		if !mode.Valid() {
			return fmt.Errorf("invalid mode %q; must be grant or revoke", mode)
		}

		permission := planSafeCmd.GetStringFlag("permission")
		if permission == "" {
			permission = cfg.DefaultPermission
		}
		if !op.IsKnownPermission(permission) {
			return fmt.Errorf("unknown permission %q; valid values: %v", permission, op.KnownPermissions)
		}

		return manager.ShowPlan(cmd.Context(), args[0], permission, mode)
	},
}

func init() {
	planSafeCmd = NewSafeCommand(planCmd)
	planSafeCmd.RegisterStringFlag("mode", "grant", "reconciliation direction: grant or revoke")
	planSafeCmd.RegisterStringFlag("permission", "", "permission level to plan for (default from config)")

	rootCmd.AddCommand(planCmd)
}
