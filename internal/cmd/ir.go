package cmd

import (
	"github.com/spf13/cobra"
)

var irSearchSafeCmd *SafeCommand

var irSearchCmd = &cobra.Command{
	Use:   "ir-search [term]",
	Short: "Search for credentials across vaults",
	Long: `Open temporary viewing access for the configured group, then scan
item titles and fields for the search term. Use --vault to restrict the
search to a single vault. Concealed field values are never read.

Once the investigation is done, run 'opsweep ir-complete' to revoke the
temporary access again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, _, err := newManager(irSearchSafeCmd)
		if err != nil {
			return err
		}

		term := ""
		if len(args) > 0 {
			term = args[0]
		}
		vaultID := irSearchSafeCmd.GetStringFlag("vault")

		return manager.IRSearch(cmd.Context(), term, vaultID)
	},
}

var irCompleteSafeCmd *SafeCommand

var irCompleteCmd = &cobra.Command{
	Use:   "ir-complete",
	Short: "Revoke the temporary access opened by ir-search",
	Long: `Revoke the configured group's viewing access from every vault that
holds it. Run this once a credential search is finished to close the
permissions it opened.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		manager, _, err := newManager(irCompleteSafeCmd)
		if err != nil {
			return err
		}

		return manager.IRComplete(cmd.Context())
	},
}

func init() {
	irSearchSafeCmd = NewSafeCommand(irSearchCmd)
	irSearchSafeCmd.RegisterStringFlag("vault", "", "restrict the search to a single vault ID")

	irCompleteSafeCmd = NewSafeCommand(irCompleteCmd)

	rootCmd.AddCommand(irSearchCmd)
	rootCmd.AddCommand(irCompleteCmd)
}
