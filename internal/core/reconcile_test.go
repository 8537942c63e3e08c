package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackm43/opsweep/internal/op"
)

// fakeDirectory is an in-memory permission store standing in for the op
// CLI. Errors can be injected per vault and per operation.
type fakeDirectory struct {
	perms    map[string][]string // vaultID -> group's permissions
	queryErr map[string]error
	writeErr map[string]error
	grants   []string
	revokes  []string
	queryLog []string
}

func newFakeDirectory(perms map[string][]string) *fakeDirectory {
	if perms == nil {
		perms = make(map[string][]string)
	}
	return &fakeDirectory{
		perms:    perms,
		queryErr: make(map[string]error),
		writeErr: make(map[string]error),
	}
}

func (d *fakeDirectory) GroupPermissions(_ context.Context, vaultID, _ string) ([]string, error) {
	d.queryLog = append(d.queryLog, vaultID)
	if err := d.queryErr[vaultID]; err != nil {
		return nil, err
	}
	return d.perms[vaultID], nil
}

func (d *fakeDirectory) GrantGroup(_ context.Context, vaultID, _, permissions string) error {
	if err := d.writeErr[vaultID]; err != nil {
		return err
	}
	d.grants = append(d.grants, vaultID)
	d.perms[vaultID] = append(d.perms[vaultID], permissions)
	return nil
}

func (d *fakeDirectory) RevokeGroup(_ context.Context, vaultID, _, permissions string) error {
	if err := d.writeErr[vaultID]; err != nil {
		return err
	}
	d.revokes = append(d.revokes, vaultID)
	kept := d.perms[vaultID][:0]
	for _, p := range d.perms[vaultID] {
		if p != permissions {
			kept = append(kept, p)
		}
	}
	d.perms[vaultID] = kept
	return nil
}

func testVaults(ids ...string) []op.Vault {
	vaults := make([]op.Vault, 0, len(ids))
	for _, id := range ids {
		vaults = append(vaults, op.Vault{ID: id, Name: "vault-" + id})
	}
	return vaults
}

func TestReconciler_GrantFillsOnlyGaps(t *testing.T) {
	t.Parallel()

	// Given: v1 already holds the permission, v2 and v3 do not
	dir := newFakeDirectory(map[string][]string{
		"v1": {"allow_viewing", "manage_vault"},
		"v2": {"manage_vault"},
		"v3": nil,
	})
	r := NewReconciler(dir, nil)

	report := r.Reconcile(context.Background(), "Owners", "allow_viewing", testVaults("v1", "v2", "v3"), ModeGrant)

	assert.Equal(t, 2, report.Changed())
	assert.Equal(t, 1, report.Satisfied())
	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, []string{"v2", "v3"}, dir.grants)
	assert.Equal(t, OutcomeSatisfied, report.Results[0].Outcome)
	assert.Equal(t, OutcomeChanged, report.Results[1].Outcome)
}

func TestReconciler_GrantIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory(map[string][]string{"v1": nil, "v2": nil})
	r := NewReconciler(dir, nil)
	vaults := testVaults("v1", "v2")

	first := r.Reconcile(context.Background(), "Owners", "allow_viewing", vaults, ModeGrant)
	second := r.Reconcile(context.Background(), "Owners", "allow_viewing", vaults, ModeGrant)

	assert.Equal(t, 2, first.Changed())
	assert.Equal(t, 0, second.Changed())
	assert.Equal(t, 2, second.Satisfied())
	assert.Len(t, dir.grants, 2, "the second run must issue no writes")
}

func TestReconciler_RevokeClearsOnlyHolders(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory(map[string][]string{
		"v1": {"allow_viewing"},
		"v2": nil,
	})
	r := NewReconciler(dir, nil)

	report := r.Reconcile(context.Background(), "Owners", "allow_viewing", testVaults("v1", "v2"), ModeRevoke)

	assert.Equal(t, 1, report.Changed())
	assert.Equal(t, 1, report.Satisfied())
	assert.Equal(t, []string{"v1"}, dir.revokes)
	assert.Empty(t, dir.perms["v1"])
}

func TestReconciler_ContinuesPastFailures(t *testing.T) {
	t.Parallel()

	// Given: the middle vault's write fails
	dir := newFakeDirectory(map[string][]string{"v1": nil, "v2": nil, "v3": nil})
	dir.writeErr["v2"] = errors.New("boom")
	r := NewReconciler(dir, nil)

	report := r.Reconcile(context.Background(), "Owners", "allow_viewing", testVaults("v1", "v2", "v3"), ModeGrant)

	require.Len(t, report.Results, 3)
	assert.Equal(t, OutcomeChanged, report.Results[0].Outcome)
	assert.Equal(t, OutcomeFailed, report.Results[1].Outcome)
	assert.Equal(t, OutcomeChanged, report.Results[2].Outcome)
	assert.Equal(t, "boom", report.Results[1].Detail)
	assert.Equal(t, []string{"v1", "v3"}, dir.grants)
}

func TestReconciler_QueryFailureCountsAsFailed(t *testing.T) {
	t.Parallel()

	dir := newFakeDirectory(map[string][]string{"v1": nil})
	dir.queryErr["v1"] = errors.New("vault not found")
	r := NewReconciler(dir, nil)

	report := r.Reconcile(context.Background(), "Owners", "allow_viewing", testVaults("v1"), ModeGrant)

	assert.Equal(t, 1, report.Failed())
	assert.Empty(t, dir.grants, "a vault with unknown state must not be written to")
}

func TestReconciler_FailedRunRetriesOnlyGaps(t *testing.T) {
	t.Parallel()

	// Given: a first run where v2 failed
	dir := newFakeDirectory(map[string][]string{"v1": nil, "v2": nil})
	dir.writeErr["v2"] = errors.New("boom")
	r := NewReconciler(dir, nil)
	vaults := testVaults("v1", "v2")

	first := r.Reconcile(context.Background(), "Owners", "allow_viewing", vaults, ModeGrant)
	require.Equal(t, 1, first.Failed())

	// When: the failure clears and the same run is repeated
	delete(dir.writeErr, "v2")
	second := r.Reconcile(context.Background(), "Owners", "allow_viewing", vaults, ModeGrant)

	// Then: only the vault that failed is touched
	assert.Equal(t, 1, second.Satisfied())
	assert.Equal(t, 1, second.Changed())
	assert.Equal(t, []string{"v1", "v2"}, dir.grants)
}

func TestReconciler_EmptyVaultList(t *testing.T) {
	t.Parallel()

	r := NewReconciler(newFakeDirectory(nil), nil)

	report := r.Reconcile(context.Background(), "Owners", "allow_viewing", nil, ModeGrant)

	assert.Empty(t, report.Results)
	assert.Equal(t, 0, report.Changed())
}

func TestMode_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, ModeGrant.Valid())
	assert.True(t, ModeRevoke.Valid())
	assert.False(t, Mode("").Valid())
	assert.False(t, Mode("delete").Valid())
}
