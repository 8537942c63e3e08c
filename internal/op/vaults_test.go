package op

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaults_ListUsesCache(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{responses: []fakeResponse{
		{output: []byte(`[{"id":"v1","name":"Infra"},{"id":"v2","name":"Shared"}]`)},
	}}
	vaults := NewVaults(newTestClient(runner, ClientOptions{}), NewListingCache(time.Minute))

	first, err := vaults.List(context.Background(), "")
	require.NoError(t, err)
	second, err := vaults.List(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, runner.calls, 1, "second listing should come from the cache")
}

func TestVaults_ListPermissionFilterCachedSeparately(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{responses: []fakeResponse{
		{output: []byte(`[{"id":"v1","name":"Infra"}]`)},
		{output: []byte(`[]`)},
	}}
	vaults := NewVaults(newTestClient(runner, ClientOptions{}), NewListingCache(time.Minute))

	all, err := vaults.List(context.Background(), "")
	require.NoError(t, err)
	managed, err := vaults.List(context.Background(), "manage_vault")
	require.NoError(t, err)

	assert.Len(t, all, 1)
	assert.Empty(t, managed)
	require.Len(t, runner.calls, 2)
	assert.Contains(t, runner.calls[1], "--permissions")
}

func TestVaults_ListWithoutCache(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{responses: []fakeResponse{{output: []byte(`[]`)}}}
	vaults := NewVaults(newTestClient(runner, ClientOptions{}), nil)

	_, err := vaults.List(context.Background(), "")
	require.NoError(t, err)
	_, err = vaults.List(context.Background(), "")
	require.NoError(t, err)

	assert.Len(t, runner.calls, 2)
}

func TestVaults_GroupPermissions(t *testing.T) {
	t.Parallel()

	listing := `[
		{"id":"g1","name":"Owners","permissions":["allow_viewing","manage_vault"]},
		{"id":"g2","name":"Developers","permissions":["view_items"]}
	]`
	runner := &fakeRunner{responses: []fakeResponse{{output: []byte(listing)}}}
	vaults := NewVaults(newTestClient(runner, ClientOptions{}), nil)

	perms, err := vaults.GroupPermissions(context.Background(), "v1", "Owners")

	require.NoError(t, err)
	assert.Equal(t, []string{"allow_viewing", "manage_vault"}, perms)
}

func TestVaults_GroupPermissionsByID(t *testing.T) {
	t.Parallel()

	listing := `[{"id":"g2","name":"Developers","permissions":["view_items"]}]`
	runner := &fakeRunner{responses: []fakeResponse{{output: []byte(listing)}}}
	vaults := NewVaults(newTestClient(runner, ClientOptions{}), nil)

	perms, err := vaults.GroupPermissions(context.Background(), "v1", "g2")

	require.NoError(t, err)
	assert.Equal(t, []string{"view_items"}, perms)
}

func TestVaults_GroupPermissionsAbsentGroup(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{responses: []fakeResponse{{output: []byte(`[]`)}}}
	vaults := NewVaults(newTestClient(runner, ClientOptions{}), nil)

	perms, err := vaults.GroupPermissions(context.Background(), "v1", "Owners")

	require.NoError(t, err)
	assert.Nil(t, perms)
}

func TestVaults_GrantGroupArgv(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{responses: []fakeResponse{
		{output: []byte(`{"vault_id":"v1","permissions":"allow_viewing"}`)},
	}}
	vaults := NewVaults(newTestClient(runner, ClientOptions{}), nil)

	err := vaults.GrantGroup(context.Background(), "v1", "Owners", "allow_viewing")

	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"vault", "group", "grant",
		"v1", "Owners",
		"--permissions", "allow_viewing",
		"--format", "json",
	}, runner.calls[0])
}

func TestVaults_RevokeUserArgv(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{responses: []fakeResponse{
		{output: []byte(`{"vault_id":"v1","permissions":"export_items"}`)},
	}}
	vaults := NewVaults(newTestClient(runner, ClientOptions{}), nil)

	err := vaults.RevokeUser(context.Background(), "v1", "u1", "export_items")

	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"vault", "user", "revoke",
		"v1", "u1",
		"--permissions", "export_items",
		"--format", "json",
	}, runner.calls[0])
}
