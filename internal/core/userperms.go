package core

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jackm43/opsweep/internal/op"
)

// UserDirectory is the narrow surface needed to reconcile per-user vault
// permissions. op.Vaults implements it.
type UserDirectory interface {
	ListUsers(ctx context.Context, vaultID string) ([]op.VaultUserAccess, error)
	GrantUser(ctx context.Context, vaultID, userID, permissions string) error
	RevokeUser(ctx context.Context, vaultID, userID, permissions string) error
}

// UserResult records the outcome for a single user on a vault
type UserResult struct {
	User    op.VaultUserAccess `json:"user"`
	Outcome Outcome            `json:"outcome"`
	Detail  string             `json:"detail,omitempty"`
}

// UserReport aggregates per-user outcomes for one vault
type UserReport struct {
	VaultID     string       `json:"vault_id"`
	Permissions []string     `json:"permissions"`
	Mode        Mode         `json:"mode"`
	Results     []UserResult `json:"results"`
}

// Changed counts users whose permission state was modified
func (r *UserReport) Changed() int { return r.count(OutcomeChanged) }

// Failed counts users whose update failed
func (r *UserReport) Failed() int { return r.count(OutcomeFailed) }

func (r *UserReport) count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// UserReconciler grants or revokes a permission set for the users of a
// vault, touching only users not already in the desired state
type UserReconciler struct {
	dir    UserDirectory
	logger *zap.Logger
}

// NewUserReconciler creates a user reconciler over the given directory
func NewUserReconciler(dir UserDirectory, logger *zap.Logger) *UserReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserReconciler{dir: dir, logger: logger}
}

// Reconcile lists the vault's users, filters to those whose current
// permissions differ from the desired state, and applies the change to
// each. onlyUserID, when non-empty, restricts processing to that user.
// Per-user failures are recorded and processing continues.
func (r *UserReconciler) Reconcile(ctx context.Context, vaultID string, permissions []string, mode Mode, onlyUserID string) (*UserReport, error) {
	report := &UserReport{
		VaultID:     vaultID,
		Permissions: permissions,
		Mode:        mode,
	}

	users, err := r.dir.ListUsers(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	if onlyUserID != "" {
		kept := users[:0]
		for _, user := range users {
			if user.ID == onlyUserID {
				kept = append(kept, user)
			}
		}
		users = kept
	}

	joined := strings.Join(permissions, ",")
	targets := filterUsersByState(users, permissions, mode)

	r.logger.Info("reconciling user permissions",
		zap.String("vault", vaultID),
		zap.String("mode", string(mode)),
		zap.Int("users_total", len(users)),
		zap.Int("users_targeted", len(targets)),
	)

	for _, user := range users {
		if !isTarget(targets, user.ID) {
			report.Results = append(report.Results, UserResult{User: user, Outcome: OutcomeSatisfied})
			continue
		}

		if mode == ModeGrant {
			err = r.dir.GrantUser(ctx, vaultID, user.ID, joined)
		} else {
			err = r.dir.RevokeUser(ctx, vaultID, user.ID, joined)
		}

		if err != nil {
			r.logger.Error("failed to update user permissions",
				zap.String("vault", vaultID),
				zap.String("user", user.ID),
				zap.Error(err),
			)
			report.Results = append(report.Results, UserResult{User: user, Outcome: OutcomeFailed, Detail: err.Error()})
			continue
		}
		report.Results = append(report.Results, UserResult{User: user, Outcome: OutcomeChanged})
	}

	return report, nil
}

// filterUsersByState selects users needing a change: for grant, users
// missing at least one desired permission; for revoke, users holding at
// least one
func filterUsersByState(users []op.VaultUserAccess, permissions []string, mode Mode) map[string]bool {
	targets := make(map[string]bool)
	for _, user := range users {
		for _, permission := range permissions {
			holds := user.HasPermission(permission)
			if (mode == ModeGrant && !holds) || (mode == ModeRevoke && holds) {
				targets[user.ID] = true
				break
			}
		}
	}
	return targets
}

func isTarget(targets map[string]bool, userID string) bool {
	return targets[userID]
}
