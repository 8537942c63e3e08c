package cmd

import (
	"github.com/spf13/cobra"
)

var listSafeCmd *SafeCommand

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List vaults and groups visible to the current account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		manager, _, err := newManager(listSafeCmd)
		if err != nil {
			return err
		}

		return manager.List(cmd.Context())
	},
}

func init() {
	listSafeCmd = NewSafeCommand(listCmd)

	rootCmd.AddCommand(listCmd)
}
