package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jackm43/opsweep/internal/op"
)

// Manager wires the op client and services together and runs the
// high-level scenarios the CLI exposes
type Manager struct {
	cfg      *Config
	client   *op.Client
	vaults   *op.Vaults
	groups   *op.Groups
	users    *op.Users
	items    *op.Items
	rec      *Reconciler
	userRec  *UserReconciler
	searcher *Searcher

	output    io.Writer
	logger    *zap.Logger
	testing   bool
	jsonOut   bool
	assumeYes bool
}

// Options carries the CLI-level switches into the manager
type Options struct {
	Testing   bool
	JSON      bool
	AssumeYes bool
	Output    io.Writer
	Logger    *zap.Logger
}

// NewManager builds the full service graph from configuration. The
// service account token, when present in the environment, is forwarded to
// the op subprocess; nothing else about the session is held locally.
func NewManager(cfg *Config, opts Options) (*Manager, error) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	runner, err := op.NewExecRunner(cfg.OpPath, os.Getenv("OP_SERVICE_ACCOUNT_TOKEN"), opts.Logger)
	if err != nil {
		return nil, err
	}

	client := op.NewClient(runner, op.ClientOptions{
		Account: cfg.Account,
		Retries: cfg.Retries,
		Logger:  opts.Logger,
	})

	cache := op.NewListingCache(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	vaults := op.NewVaults(client, cache)
	items := op.NewItems(client)

	return &Manager{
		cfg:       cfg,
		client:    client,
		vaults:    vaults,
		groups:    op.NewGroups(client, cache),
		users:     op.NewUsers(client),
		items:     items,
		rec:       NewReconciler(vaults, opts.Logger),
		userRec:   NewUserReconciler(vaults, opts.Logger),
		searcher:  NewSearcher(items, opts.Logger),
		output:    opts.Output,
		logger:    opts.Logger,
		testing:   opts.Testing,
		jsonOut:   opts.JSON,
		assumeYes: opts.AssumeYes,
	}, nil
}

// Grant grants the permission to the group on every selected vault
func (m *Manager) Grant(ctx context.Context, group, permission string) error {
	return m.runReconcile(ctx, group, permission, ModeGrant, "")
}

// Revoke revokes the permission from the group on every vault that holds it
func (m *Manager) Revoke(ctx context.Context, group, permission string) error {
	return m.runReconcile(ctx, group, permission, ModeRevoke, permission)
}

func (m *Manager) runReconcile(ctx context.Context, group, permission string, mode Mode, listFilter string) error {
	vaults, err := m.selectVaults(ctx, listFilter)
	if err != nil {
		return err
	}

	if !m.assumeYes {
		if !m.confirm(fmt.Sprintf("About to %s %s for group %s on %d vaults. Continue?", mode, permission, group, len(vaults))) {
			fmt.Fprintln(m.output, "Cancelled")
			return nil
		}
	}

	report := m.rec.Reconcile(ctx, group, permission, vaults, mode)
	if err := m.displayReport(report); err != nil {
		return err
	}

	if report.Failed() > 0 {
		return fmt.Errorf("%d of %d vaults failed; re-run to retry", report.Failed(), len(report.Results))
	}
	return nil
}

// ShowPlan displays the changes a reconciliation run would make
func (m *Manager) ShowPlan(ctx context.Context, group, permission string, mode Mode) error {
	vaults, err := m.selectVaults(ctx, "")
	if err != nil {
		return err
	}

	plan, err := m.rec.Plan(ctx, group, permission, vaults, mode)
	if err != nil {
		return fmt.Errorf("failed to compute plan: %w", err)
	}

	if m.jsonOut {
		return plan.DisplayJSON(m.output)
	}
	plan.Display(m.output)
	return nil
}

// IRSearch opens viewing access for the configured group on the selected
// vaults, then scans item fields for the term. Run IRComplete afterwards
// to close the access again.
func (m *Manager) IRSearch(ctx context.Context, term, vaultID string) error {
	if m.testing && term == "" {
		term = m.cfg.Testing.SearchTerm
	}
	if term == "" {
		return fmt.Errorf("search term is required")
	}

	vaults, err := m.searchScope(ctx, vaultID)
	if err != nil {
		return err
	}

	report := m.rec.Reconcile(ctx, m.cfg.DefaultGroup, m.cfg.DefaultPermission, vaults, ModeGrant)
	if report.Failed() > 0 {
		fmt.Fprintf(m.output, "Warning: viewing access could not be opened on %d vaults; their items are not searched\n", report.Failed())
	}

	matches, err := m.searcher.Search(ctx, term, vaultID)
	if err != nil {
		return err
	}

	if err := m.displayMatches(matches); err != nil {
		return err
	}

	fmt.Fprintf(m.output, "\nRun 'opsweep ir-complete' to revoke the temporary viewing access\n")
	return nil
}

// IRComplete revokes the configured group's viewing access from every
// vault that holds it
func (m *Manager) IRComplete(ctx context.Context) error {
	return m.runReconcile(ctx, m.cfg.DefaultGroup, m.cfg.DefaultPermission, ModeRevoke, m.cfg.DefaultPermission)
}

// List displays the vault and group inventory
func (m *Manager) List(ctx context.Context) error {
	vaults, err := m.selectVaults(ctx, "")
	if err != nil {
		return err
	}
	groups, err := m.groups.List(ctx)
	if err != nil {
		return err
	}

	if m.jsonOut {
		return displayJSON(m.output, map[string]any{"vaults": vaults, "groups": groups})
	}

	fmt.Fprintln(m.output, "Vaults:")
	if len(vaults) == 0 {
		fmt.Fprintln(m.output, "  (none)")
	}
	for _, vault := range vaults {
		fmt.Fprintf(m.output, "  %s  %s\n", vault.ID, vault.Name)
	}

	fmt.Fprintln(m.output, "\nGroups:")
	if len(groups) == 0 {
		fmt.Fprintln(m.output, "  (none)")
	}
	for _, group := range groups {
		fmt.Fprintf(m.output, "  %s  %s\n", group.ID, group.Name)
	}
	return nil
}

// UserPerms grants or revokes a permission set for the users of one vault
// or, when vaultID is empty, of every vault listed as holding the
// permissions. onlyUser, when non-empty, restricts the update to that
// user (by ID or email).
func (m *Manager) UserPerms(ctx context.Context, vaultID string, permissions []string, mode Mode, onlyUser string) error {
	if m.testing && len(m.cfg.Testing.VaultIDs) > 0 {
		vaultID = m.cfg.Testing.VaultIDs[0]
		m.logger.Info("testing mode: using fixed vault", zap.String("vault", vaultID))
	}

	if onlyUser != "" {
		user, err := m.users.Get(ctx, onlyUser)
		if err != nil {
			return err
		}
		onlyUser = user.ID
	}

	vaultIDs := []string{vaultID}
	if vaultID == "" {
		vaults, err := m.vaults.List(ctx, strings.Join(permissions, ","))
		if err != nil {
			return err
		}
		vaultIDs = vaultIDs[:0]
		for _, vault := range vaults {
			vaultIDs = append(vaultIDs, vault.ID)
		}
	}

	reports := make([]*UserReport, 0, len(vaultIDs))
	for _, id := range vaultIDs {
		report, err := m.userRec.Reconcile(ctx, id, permissions, mode, onlyUser)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}

	if m.jsonOut {
		if len(reports) == 1 {
			return displayJSON(m.output, reports[0])
		}
		return displayJSON(m.output, reports)
	}

	changed, failed := 0, 0
	for _, report := range reports {
		if len(reports) > 1 {
			fmt.Fprintf(m.output, "Vault %s:\n", report.VaultID)
		}
		for _, res := range report.Results {
			fmt.Fprintf(m.output, "  %-18s %s (%s)\n", res.Outcome, res.User.Email, res.User.ID)
		}
		changed += report.Changed()
		failed += report.Failed()
	}
	fmt.Fprintf(m.output, "\n%d users changed, %d failed\n", changed, failed)

	if failed > 0 {
		return fmt.Errorf("%d user updates failed; re-run to retry", failed)
	}
	return nil
}

// Check verifies the op binary version and sign-in state
func (m *Manager) Check(ctx context.Context) error {
	if err := m.client.CheckVersion(ctx); err != nil {
		return err
	}
	fmt.Fprintf(m.output, "op CLI version OK (minimum %s)\n", op.MinVersion)

	// A vault listing doubles as a cheap sign-in probe
	vaults, err := m.vaults.List(ctx, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(m.output, "Signed in; %d vaults accessible\n", len(vaults))
	return nil
}

// selectVaults enumerates the vaults a run operates on. Testing mode
// replaces enumeration with the fixed subset pinned in config, no matter
// how large the real inventory is.
func (m *Manager) selectVaults(ctx context.Context, permissionFilter string) ([]op.Vault, error) {
	if m.testing {
		vaults := make([]op.Vault, 0, len(m.cfg.Testing.VaultIDs))
		for _, id := range m.cfg.Testing.VaultIDs {
			vaults = append(vaults, op.Vault{ID: id, Name: id})
		}
		m.logger.Info("testing mode: vault enumeration restricted",
			zap.Int("vaults", len(vaults)),
		)
		return vaults, nil
	}

	return m.vaults.List(ctx, permissionFilter)
}

// searchScope resolves the vault set for an IR search: one vault when
// vaultID is set, otherwise everything selectVaults yields
func (m *Manager) searchScope(ctx context.Context, vaultID string) ([]op.Vault, error) {
	if vaultID == "" {
		return m.selectVaults(ctx, "")
	}

	details, err := m.vaults.Get(ctx, vaultID)
	if err != nil {
		return nil, fmt.Errorf("invalid vault %s: %w", vaultID, err)
	}
	return []op.Vault{{ID: details.ID, Name: details.Name}}, nil
}

func (m *Manager) displayReport(report *Report) error {
	if m.jsonOut {
		return report.DisplayJSON(m.output)
	}
	report.Display(m.output)
	return nil
}

func (m *Manager) displayMatches(matches []Match) error {
	if m.jsonOut {
		return displayJSON(m.output, matches)
	}

	if len(matches) == 0 {
		fmt.Fprintln(m.output, "No matching items found")
		return nil
	}

	fmt.Fprintf(m.output, "Found %d matching items:\n", len(matches))
	for _, match := range matches {
		field := match.Field
		if field == "" {
			field = "title"
		}
		fmt.Fprintf(m.output, "  %s (%s) in vault %s, matched on %s\n", match.Title, match.ItemID, match.VaultName, field)
	}
	return nil
}

func (m *Manager) confirm(prompt string) bool {
	fmt.Fprintf(m.output, "%s [y/N]: ", prompt)
	var response string
	_, _ = fmt.Scanln(&response) // User input, ignore errors
	return response == "y" || response == "Y"
}
