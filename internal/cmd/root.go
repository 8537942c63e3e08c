// Package cmd provides the CLI commands for the opsweep tool
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jackm43/opsweep/internal/core"
	"github.com/jackm43/opsweep/internal/logger"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "opsweep",
	Short: "Bulk 1Password permission management CLI",
	Long: `A CLI tool for granting and revoking 1Password vault permissions in bulk.
Wraps the op CLI with a reconciliation loop: current permission state is
read from 1Password, compared against the desired state, and only the
vaults that differ are touched.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

// Execute runs the root command and returns any error
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional; it may carry OP_SERVICE_ACCOUNT_TOKEN
	_ = godotenv.Load()

	rootCmd.PersistentFlags().String("config", core.DefaultConfigPath, "path to opsweep config file")
	rootCmd.PersistentFlags().String("op-path", "", "path to op binary (overrides config)")
	rootCmd.PersistentFlags().String("account", "", "1Password account shorthand (overrides config)")
	rootCmd.PersistentFlags().Bool("testing", false, "restrict vault enumeration to the fixed testing subset")
	rootCmd.PersistentFlags().Bool("json", false, "output reports in JSON format")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "automatically confirm prompts")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	rootCmd.SetOut(os.Stderr)
	rootCmd.SetErr(os.Stderr)
}

// newManager loads configuration, applies flag overrides, and builds the
// service graph for a command invocation
func newManager(sc *SafeCommand) (*core.Manager, *core.Config, error) {
	cfg, err := core.LoadConfigOrDefault(sc.GetStringFlag("config"))
	if err != nil {
		return nil, nil, err
	}

	if opPath := sc.GetStringFlag("op-path"); opPath != "" {
		cfg.OpPath = opPath
	}
	if account := sc.GetStringFlag("account"); account != "" {
		cfg.Account = account
	}

	log, err := logger.New(sc.GetBoolFlag("verbose"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	manager, err := core.NewManager(cfg, core.Options{
		Testing:   sc.GetBoolFlag("testing"),
		JSON:      sc.GetBoolFlag("json"),
		AssumeYes: sc.GetBoolFlag("yes"),
		Output:    os.Stdout,
		Logger:    log,
	})
	if err != nil {
		return nil, nil, err
	}

	return manager, cfg, nil
}
