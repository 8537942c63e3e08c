package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackm43/opsweep/internal/core"
)

var initSafeCmd *SafeCommand

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default opsweep.yaml configuration",
	Long: `Create an opsweep.yaml in the current directory (or at --config) with
sensible defaults. Edit it afterwards to set your account, default group and
default permission.

Use --force to overwrite an existing configuration file.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := initSafeCmd.GetStringFlag("config")
		if path == "" {
			path = core.DefaultConfigPath
		}
		force := initSafeCmd.GetBoolFlag("force")

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists; use --force to overwrite", path)
		}

		cfg := core.DefaultConfig()
		if err := cfg.Save(path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	initSafeCmd = NewSafeCommand(initCmd)
	initSafeCmd.RegisterBoolFlag("force", false, "overwrite an existing configuration file")

	rootCmd.AddCommand(initCmd)
}
