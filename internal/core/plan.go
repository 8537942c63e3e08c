package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/jackm43/opsweep/internal/op"
)

// ActionType classifies a planned change
type ActionType string

// Planned action types
const (
	ActionGrant  ActionType = "grant"
	ActionRevoke ActionType = "revoke"
	ActionSkip   ActionType = "skip"
)

// Action is a single planned change for one vault
type Action struct {
	Vault  op.Vault   `json:"vault"`
	Type   ActionType `json:"type"`
	Reason string     `json:"reason"`
}

// Plan lists the changes a reconciliation run would make, without
// applying any of them
type Plan struct {
	Group      string   `json:"group"`
	Permission string   `json:"permission"`
	Mode       Mode     `json:"mode"`
	Actions    []Action `json:"actions"`
}

// Plan computes per-vault decisions without issuing writes. Unlike
// Reconcile, a query failure aborts the plan: an advisory dry run with
// holes in it is worse than no dry run.
func (r *Reconciler) Plan(ctx context.Context, group, permission string, vaults []op.Vault, mode Mode) (*Plan, error) {
	plan := &Plan{
		Group:      group,
		Permission: permission,
		Mode:       mode,
		Actions:    make([]Action, 0, len(vaults)),
	}

	for _, vault := range vaults {
		current, err := r.dir.GroupPermissions(ctx, vault.ID, group)
		if err != nil {
			return nil, fmt.Errorf("failed to query vault %s: %w", vault.ID, err)
		}

		holds := slices.Contains(current, permission)
		switch {
		case mode == ModeGrant && !holds:
			plan.Actions = append(plan.Actions, Action{
				Vault:  vault,
				Type:   ActionGrant,
				Reason: fmt.Sprintf("group %s lacks %s", group, permission),
			})
		case mode == ModeRevoke && holds:
			plan.Actions = append(plan.Actions, Action{
				Vault:  vault,
				Type:   ActionRevoke,
				Reason: fmt.Sprintf("group %s holds %s", group, permission),
			})
		default:
			plan.Actions = append(plan.Actions, Action{
				Vault:  vault,
				Type:   ActionSkip,
				Reason: "already in desired state",
			})
		}
	}

	return plan, nil
}

// Changes counts non-skip actions
func (p *Plan) Changes() int {
	n := 0
	for _, action := range p.Actions {
		if action.Type != ActionSkip {
			n++
		}
	}
	return n
}

// Display writes the plan in human-readable form
func (p *Plan) Display(w io.Writer) {
	fmt.Fprintf(w, "Plan: %s %s for group %s\n\n", p.Mode, p.Permission, p.Group)

	if len(p.Actions) == 0 {
		fmt.Fprintln(w, "  (no vaults)")
		return
	}

	for _, action := range p.Actions {
		marker := "="
		switch action.Type {
		case ActionGrant:
			marker = "+"
		case ActionRevoke:
			marker = "-"
		}
		fmt.Fprintf(w, "  %s %-12s %s (%s): %s\n", marker, action.Type, action.Vault.Name, action.Vault.ID, action.Reason)
	}

	fmt.Fprintf(w, "\n%d of %d vaults would change\n", p.Changes(), len(p.Actions))
}

// DisplayJSON writes the plan as JSON
func (p *Plan) DisplayJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// Display writes the report in human-readable form
func (r *Report) Display(w io.Writer) {
	fmt.Fprintf(w, "Reconciled %s %s for group %s\n\n", r.Mode, r.Permission, r.Group)

	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeFailed:
			fmt.Fprintf(w, "  ✗ %-18s %s (%s): %s\n", res.Outcome, res.Vault.Name, res.Vault.ID, res.Detail)
		case OutcomeChanged:
			fmt.Fprintf(w, "  ✓ %-18s %s (%s)\n", res.Outcome, res.Vault.Name, res.Vault.ID)
		default:
			fmt.Fprintf(w, "  = %-18s %s (%s)\n", res.Outcome, res.Vault.Name, res.Vault.ID)
		}
	}

	fmt.Fprintf(w, "\n%d changed, %d already satisfied, %d failed\n", r.Changed(), r.Satisfied(), r.Failed())
}

// DisplayJSON writes the report as JSON
func (r *Report) DisplayJSON(w io.Writer) error {
	return displayJSON(w, r)
}

func displayJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
