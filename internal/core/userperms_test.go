package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackm43/opsweep/internal/op"
)

// fakeUserDirectory is an in-memory per-user permission store
type fakeUserDirectory struct {
	users      []op.VaultUserAccess
	listErr    error
	listVaults []string
	writeErr   map[string]error
	grants     map[string]string // userID -> joined permissions
	revokes    map[string]string
}

func newFakeUserDirectory(users ...op.VaultUserAccess) *fakeUserDirectory {
	return &fakeUserDirectory{
		users:    users,
		writeErr: make(map[string]error),
		grants:   make(map[string]string),
		revokes:  make(map[string]string),
	}
}

func (d *fakeUserDirectory) ListUsers(_ context.Context, vaultID string) ([]op.VaultUserAccess, error) {
	d.listVaults = append(d.listVaults, vaultID)
	if d.listErr != nil {
		return nil, d.listErr
	}
	return d.users, nil
}

func (d *fakeUserDirectory) GrantUser(_ context.Context, _, userID, permissions string) error {
	if err := d.writeErr[userID]; err != nil {
		return err
	}
	d.grants[userID] = permissions
	return nil
}

func (d *fakeUserDirectory) RevokeUser(_ context.Context, _, userID, permissions string) error {
	if err := d.writeErr[userID]; err != nil {
		return err
	}
	d.revokes[userID] = permissions
	return nil
}

func user(id string, permissions ...string) op.VaultUserAccess {
	return op.VaultUserAccess{ID: id, Name: "user-" + id, Email: id + "@example.com", Permissions: permissions}
}

func TestUserReconciler_RevokeTouchesOnlyHolders(t *testing.T) {
	t.Parallel()

	dir := newFakeUserDirectory(
		user("u1", "view_items", "export_items"),
		user("u2", "view_items"),
	)
	r := NewUserReconciler(dir, nil)

	report, err := r.Reconcile(context.Background(), "v1", []string{"export_items"}, ModeRevoke, "")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed())
	assert.Equal(t, "export_items", dir.revokes["u1"])
	assert.NotContains(t, dir.revokes, "u2")
	assert.Equal(t, OutcomeSatisfied, report.Results[1].Outcome)
}

func TestUserReconciler_GrantTouchesOnlyMissing(t *testing.T) {
	t.Parallel()

	dir := newFakeUserDirectory(
		user("u1", "view_items", "copy_and_share_items"),
		user("u2", "view_items"),
	)
	r := NewUserReconciler(dir, nil)

	report, err := r.Reconcile(context.Background(), "v1", []string{"view_items", "copy_and_share_items"}, ModeGrant, "")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed())
	assert.NotContains(t, dir.grants, "u1")
	assert.Equal(t, "view_items,copy_and_share_items", dir.grants["u2"])
}

func TestUserReconciler_SingleUserFilterLimitsWrites(t *testing.T) {
	t.Parallel()

	dir := newFakeUserDirectory(
		user("u1", "export_items"),
		user("u2", "export_items"),
	)
	r := NewUserReconciler(dir, nil)

	report, err := r.Reconcile(context.Background(), "v1", []string{"export_items"}, ModeRevoke, "u2")

	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.NotContains(t, dir.revokes, "u1")
	assert.Contains(t, dir.revokes, "u2")
}

func TestUserReconciler_ContinuesPastFailures(t *testing.T) {
	t.Parallel()

	dir := newFakeUserDirectory(
		user("u1", "export_items"),
		user("u2", "export_items"),
		user("u3", "export_items"),
	)
	dir.writeErr["u2"] = errors.New("boom")
	r := NewUserReconciler(dir, nil)

	report, err := r.Reconcile(context.Background(), "v1", []string{"export_items"}, ModeRevoke, "")

	require.NoError(t, err)
	assert.Equal(t, 2, report.Changed())
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, OutcomeFailed, report.Results[1].Outcome)
	assert.Contains(t, dir.revokes, "u3")
}

func TestUserReconciler_ListFailureAborts(t *testing.T) {
	t.Parallel()

	dir := newFakeUserDirectory()
	dir.listErr = errors.New("vault not found")
	r := NewUserReconciler(dir, nil)

	report, err := r.Reconcile(context.Background(), "v1", []string{"export_items"}, ModeRevoke, "")

	require.Error(t, err)
	assert.Nil(t, report)
}

func TestUserReconciler_RevokeIsIdempotent(t *testing.T) {
	t.Parallel()

	// Given: no user holds the permission anymore
	dir := newFakeUserDirectory(
		user("u1", "view_items"),
		user("u2"),
	)
	r := NewUserReconciler(dir, nil)

	report, err := r.Reconcile(context.Background(), "v1", []string{"export_items"}, ModeRevoke, "")

	require.NoError(t, err)
	assert.Equal(t, 0, report.Changed())
	assert.Empty(t, dir.revokes)
	for _, res := range report.Results {
		assert.Equal(t, OutcomeSatisfied, res.Outcome)
	}
}
