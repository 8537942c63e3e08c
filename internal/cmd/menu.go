package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackm43/opsweep/internal/core"
	"github.com/jackm43/opsweep/internal/op"
)

var menuSafeCmd *SafeCommand

type menuEntry struct {
	name        string
	description string
	run         func(cmd *cobra.Command, manager *core.Manager, cfg *core.Config, in *bufio.Reader) error
}

var menuEntries = []menuEntry{
	{
		name:        "grant",
		description: "grant a permission to a group across all vaults",
		run: func(cmd *cobra.Command, manager *core.Manager, cfg *core.Config, in *bufio.Reader) error {
			group := promptDefault(in, "group", cfg.DefaultGroup)
			permission := promptDefault(in, "permission", cfg.DefaultPermission)
			return manager.Grant(cmd.Context(), group, permission)
		},
	},
	{
		name:        "revoke",
		description: "revoke a permission from a group across all vaults",
		run: func(cmd *cobra.Command, manager *core.Manager, cfg *core.Config, in *bufio.Reader) error {
			group := promptDefault(in, "group", cfg.DefaultGroup)
			permission := promptDefault(in, "permission", cfg.DefaultPermission)
			return manager.Revoke(cmd.Context(), group, permission)
		},
	},
	{
		name:        "plan",
		description: "show what grant or revoke would change, without changing it",
		run: func(cmd *cobra.Command, manager *core.Manager, cfg *core.Config, in *bufio.Reader) error {
			group := promptDefault(in, "group", cfg.DefaultGroup)
			permission := promptDefault(in, "permission", cfg.DefaultPermission)
			mode := core.Mode(promptDefault(in, "mode (grant/revoke)", string(core.ModeGrant)))
			if !mode.Valid() {
				return fmt.Errorf("invalid mode %q", mode)
			}
			return manager.ShowPlan(cmd.Context(), group, permission, mode)
		},
	},
	{
		name:        "ir-search",
		description: "open all vaults for viewing and search items for a term",
		run: func(cmd *cobra.Command, manager *core.Manager, _ *core.Config, in *bufio.Reader) error {
			term := promptDefault(in, "search term", "")
			vaultID := promptDefault(in, "vault ID (empty for all)", "")
			return manager.IRSearch(cmd.Context(), term, vaultID)
		},
	},
	{
		name:        "ir-complete",
		description: "close the viewing access opened by ir-search",
		run: func(cmd *cobra.Command, manager *core.Manager, _ *core.Config, _ *bufio.Reader) error {
			return manager.IRComplete(cmd.Context())
		},
	},
	{
		name:        "user-perms",
		description: "grant or revoke permissions for a vault's users",
		run: func(cmd *cobra.Command, manager *core.Manager, _ *core.Config, in *bufio.Reader) error {
			vaultID := promptDefault(in, "vault ID (empty for all)", "")
			mode := core.Mode(promptDefault(in, "mode (grant/revoke)", string(core.ModeRevoke)))
			if !mode.Valid() {
				return fmt.Errorf("invalid mode %q", mode)
			}
			raw := promptDefault(in, "permissions (comma separated)", op.PermExportItems)
			var permissions []string
			for _, p := range strings.Split(raw, ",") {
				p = strings.TrimSpace(p)
				if p == "" {
					continue
				}
				if !op.IsKnownPermission(p) {
					return fmt.Errorf("unknown permission %q; valid values: %v", p, op.KnownPermissions)
				}
				permissions = append(permissions, p)
			}
			onlyUser := promptDefault(in, "single user (empty for all)", "")
			return manager.UserPerms(cmd.Context(), vaultID, permissions, mode, onlyUser)
		},
	},
	{
		name:        "list",
		description: "list vaults and groups",
		run: func(cmd *cobra.Command, manager *core.Manager, _ *core.Config, _ *bufio.Reader) error {
			return manager.List(cmd.Context())
		},
	},
	{
		name:        "check",
		description: "verify the op binary and account sign-in",
		run: func(cmd *cobra.Command, manager *core.Manager, _ *core.Config, _ *bufio.Reader) error {
			return manager.Check(cmd.Context())
		},
	},
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick an operation interactively",
	Long: `Show a numbered menu of operations and run the selected one, prompting
for its inputs. Selection accepts either the number or the name; an empty
line or "q" exits.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		manager, cfg, err := newManager(menuSafeCmd)
		if err != nil {
			return err
		}

		in := bufio.NewReader(os.Stdin)
		out := cmd.OutOrStdout()

		for {
			fmt.Fprintln(out)
			for i, entry := range menuEntries {
				fmt.Fprintf(out, "  %d) %-12s %s\n", i+1, entry.name, entry.description)
			}
			fmt.Fprint(out, "select (number or name, q to quit): ")

			line, err := in.ReadString('\n')
			if err != nil {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" || line == "q" || line == "quit" {
				return nil
			}

			entry, ok := findMenuEntry(line)
			if !ok {
				fmt.Fprintf(out, "no such operation: %s\n", line)
				continue
			}

			if err := entry.run(cmd, manager, cfg, in); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	},
}

func findMenuEntry(selection string) (menuEntry, bool) {
	if n, err := strconv.Atoi(selection); err == nil {
		if n < 1 || n > len(menuEntries) {
			return menuEntry{}, false
		}
		return menuEntries[n-1], true
	}
	for _, entry := range menuEntries {
		if entry.name == selection {
			return entry, true
		}
	}
	return menuEntry{}, false
}

// promptDefault reads one line, falling back to def on empty input
func promptDefault(in *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Fprintf(os.Stderr, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(os.Stderr, "%s: ", label)
	}
	line, err := in.ReadString('\n')
	if err != nil {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func init() {
	menuSafeCmd = NewSafeCommand(menuCmd)

	rootCmd.AddCommand(menuCmd)
}
