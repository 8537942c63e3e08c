package core

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/jackm43/opsweep/internal/op"
)

// Mode selects the reconciliation direction
type Mode string

// Reconciliation modes
const (
	ModeGrant  Mode = "grant"
	ModeRevoke Mode = "revoke"
)

// Valid reports whether the mode is one of grant/revoke
func (m Mode) Valid() bool {
	return m == ModeGrant || m == ModeRevoke
}

// Outcome is the per-vault result of a reconciliation pass
type Outcome string

// Per-vault outcomes
const (
	OutcomeSatisfied Outcome = "already-satisfied"
	OutcomeChanged   Outcome = "changed"
	OutcomeFailed    Outcome = "failed"
)

// VaultResult records what happened to a single vault
type VaultResult struct {
	Vault   op.Vault `json:"vault"`
	Outcome Outcome  `json:"outcome"`
	Err     error    `json:"-"`
	Detail  string   `json:"detail,omitempty"`
}

// Report aggregates per-vault outcomes for one reconciliation run
type Report struct {
	Group      string        `json:"group"`
	Permission string        `json:"permission"`
	Mode       Mode          `json:"mode"`
	Results    []VaultResult `json:"results"`
}

// Changed counts vaults whose permission state was modified
func (r *Report) Changed() int { return r.count(OutcomeChanged) }

// Satisfied counts vaults already in the desired state
func (r *Report) Satisfied() int { return r.count(OutcomeSatisfied) }

// Failed counts vaults whose query or write failed
func (r *Report) Failed() int { return r.count(OutcomeFailed) }

func (r *Report) count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Directory is the narrow surface the reconciler needs from the external
// permission system. op.Vaults implements it; tests substitute a fake.
type Directory interface {
	GroupPermissions(ctx context.Context, vaultID, group string) ([]string, error)
	GrantGroup(ctx context.Context, vaultID, group, permissions string) error
	RevokeGroup(ctx context.Context, vaultID, group, permissions string) error
}

// Reconciler brings observed group-to-vault permission state into
// alignment with the desired state. It holds no authoritative state of
// its own: every decision is read-then-write against the directory, and
// races with concurrent external changes are accepted and unguarded.
type Reconciler struct {
	dir    Directory
	logger *zap.Logger
}

// NewReconciler creates a reconciler over the given directory
func NewReconciler(dir Directory, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{dir: dir, logger: logger}
}

// Reconcile processes vaults sequentially. For each vault it queries the
// group's current permissions and issues a grant or revoke only when the
// observed state differs from the desired one. A failure on one vault is
// recorded and processing continues: grants and revokes are independent
// per-vault facts, so there is no rollback and no retry here.
func (r *Reconciler) Reconcile(ctx context.Context, group, permission string, vaults []op.Vault, mode Mode) *Report {
	report := &Report{
		Group:      group,
		Permission: permission,
		Mode:       mode,
		Results:    make([]VaultResult, 0, len(vaults)),
	}

	r.logger.Info("starting reconciliation",
		zap.String("group", group),
		zap.String("permission", permission),
		zap.String("mode", string(mode)),
		zap.Int("vaults", len(vaults)),
	)

	for _, vault := range vaults {
		report.Results = append(report.Results, r.reconcileVault(ctx, vault, group, permission, mode))
	}

	r.logger.Info("reconciliation finished",
		zap.Int("changed", report.Changed()),
		zap.Int("satisfied", report.Satisfied()),
		zap.Int("failed", report.Failed()),
	)
	return report
}

func (r *Reconciler) reconcileVault(ctx context.Context, vault op.Vault, group, permission string, mode Mode) VaultResult {
	current, err := r.dir.GroupPermissions(ctx, vault.ID, group)
	if err != nil {
		r.logger.Error("failed to query vault permissions",
			zap.String("vault", vault.ID),
			zap.Error(err),
		)
		return VaultResult{Vault: vault, Outcome: OutcomeFailed, Err: err, Detail: err.Error()}
	}

	holds := slices.Contains(current, permission)

	switch {
	case mode == ModeGrant && holds, mode == ModeRevoke && !holds:
		return VaultResult{Vault: vault, Outcome: OutcomeSatisfied}
	case mode == ModeGrant:
		err = r.dir.GrantGroup(ctx, vault.ID, group, permission)
	default:
		err = r.dir.RevokeGroup(ctx, vault.ID, group, permission)
	}

	if err != nil {
		r.logger.Error("failed to update vault permissions",
			zap.String("vault", vault.ID),
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		return VaultResult{Vault: vault, Outcome: OutcomeFailed, Err: err, Detail: err.Error()}
	}

	r.logger.Info("vault permission updated",
		zap.String("vault", vault.ID),
		zap.String("group", group),
		zap.String("permission", permission),
		zap.String("mode", string(mode)),
	)
	return VaultResult{Vault: vault, Outcome: OutcomeChanged}
}
