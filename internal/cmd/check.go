package cmd

import (
	"github.com/spf13/cobra"
)

var checkSafeCmd *SafeCommand

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the op binary and account sign-in",
	Long: `Check that the op binary is present and recent enough, and that the
configured account can list vaults. Run this before anything destructive.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		manager, _, err := newManager(checkSafeCmd)
		if err != nil {
			return err
		}

		return manager.Check(cmd.Context())
	},
}

func init() {
	checkSafeCmd = NewSafeCommand(checkCmd)

	rootCmd.AddCommand(checkCmd)
}
