package op

import (
	"context"

	cerr "github.com/cockroachdb/errors"
)

// Vaults wraps the `op vault` subcommand family, including the group and
// user permission operations the reconciler drives.
type Vaults struct {
	client *Client
	cache  *ListingCache
}

// NewVaults creates the vault service. cache may be nil to disable
// inventory caching.
func NewVaults(client *Client, cache *ListingCache) *Vaults {
	return &Vaults{client: client, cache: cache}
}

// List enumerates accessible vaults. permissionFilter, when non-empty,
// restricts the listing to vaults where the caller holds that permission.
func (v *Vaults) List(ctx context.Context, permissionFilter string) ([]Vault, error) {
	cacheKey := "vault.list:" + permissionFilter
	if cached, ok := v.cache.Get(cacheKey); ok {
		if vaults, ok := cached.([]Vault); ok {
			return vaults, nil
		}
	}

	cmd := NewCommand("vault").Sub("list").OptionIf("permissions", permissionFilter)

	var vaults []Vault
	if err := v.client.Do(ctx, cmd, &vaults); err != nil {
		return nil, cerr.Wrap(err, "failed to list vaults")
	}

	v.cache.Set(cacheKey, vaults)
	return vaults, nil
}

// Get fetches full details for a single vault by ID or name
func (v *Vaults) Get(ctx context.Context, vaultID string) (*VaultDetails, error) {
	cmd := NewCommand("vault").Sub("get").Arg(vaultID)

	var details VaultDetails
	if err := v.client.Do(ctx, cmd, &details); err != nil {
		return nil, cerr.Wrapf(err, "failed to get vault %s", vaultID)
	}
	return &details, nil
}

// ListGroups reports every group with access to the vault, including
// each group's permission set
func (v *Vaults) ListGroups(ctx context.Context, vaultID string) ([]VaultGroupAccess, error) {
	cmd := NewCommand("vault").Sub("group").Sub("list").Arg(vaultID)

	var groups []VaultGroupAccess
	if err := v.client.Do(ctx, cmd, &groups); err != nil {
		return nil, cerr.Wrapf(err, "failed to list groups for vault %s", vaultID)
	}
	return groups, nil
}

// ListUsers reports every user with access to the vault, including each
// user's permission set
func (v *Vaults) ListUsers(ctx context.Context, vaultID string) ([]VaultUserAccess, error) {
	cmd := NewCommand("vault").Sub("user").Sub("list").Arg(vaultID)

	var users []VaultUserAccess
	if err := v.client.Do(ctx, cmd, &users); err != nil {
		return nil, cerr.Wrapf(err, "failed to list users for vault %s", vaultID)
	}
	return users, nil
}

// GroupPermissions returns the group's current permission set on the
// vault. A group without access yields an empty set.
func (v *Vaults) GroupPermissions(ctx context.Context, vaultID, group string) ([]string, error) {
	groups, err := v.ListGroups(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	for _, access := range groups {
		if access.Name == group || access.ID == group {
			return access.Permissions, nil
		}
	}
	return nil, nil
}

// GrantGroup grants the permission set to a group on a vault
func (v *Vaults) GrantGroup(ctx context.Context, vaultID, group, permissions string) error {
	cmd := NewCommand("vault").Sub("group").Sub("grant").
		Arg(vaultID).Arg(group).
		Option("permissions", permissions)

	var update PermissionUpdate
	if err := v.client.Do(ctx, cmd, &update); err != nil {
		return cerr.Wrapf(err, "failed to grant %s to group %s on vault %s", permissions, group, vaultID)
	}
	return nil
}

// RevokeGroup revokes the permission set from a group on a vault
func (v *Vaults) RevokeGroup(ctx context.Context, vaultID, group, permissions string) error {
	cmd := NewCommand("vault").Sub("group").Sub("revoke").
		Arg(vaultID).Arg(group).
		Option("permissions", permissions)

	var update PermissionUpdate
	if err := v.client.Do(ctx, cmd, &update); err != nil {
		return cerr.Wrapf(err, "failed to revoke %s from group %s on vault %s", permissions, group, vaultID)
	}
	return nil
}

// GrantUser grants the permission set to a user on a vault
func (v *Vaults) GrantUser(ctx context.Context, vaultID, userID, permissions string) error {
	cmd := NewCommand("vault").Sub("user").Sub("grant").
		Arg(vaultID).Arg(userID).
		Option("permissions", permissions)

	var update PermissionUpdate
	if err := v.client.Do(ctx, cmd, &update); err != nil {
		return cerr.Wrapf(err, "failed to grant %s to user %s on vault %s", permissions, userID, vaultID)
	}
	return nil
}

// RevokeUser revokes the permission set from a user on a vault
func (v *Vaults) RevokeUser(ctx context.Context, vaultID, userID, permissions string) error {
	cmd := NewCommand("vault").Sub("user").Sub("revoke").
		Arg(vaultID).Arg(userID).
		Option("permissions", permissions)

	var update PermissionUpdate
	if err := v.client.Do(ctx, cmd, &update); err != nil {
		return cerr.Wrapf(err, "failed to revoke %s from user %s on vault %s", permissions, userID, vaultID)
	}
	return nil
}
