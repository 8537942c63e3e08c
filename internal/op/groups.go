package op

import (
	"context"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

// Groups wraps the `op group` subcommand family
type Groups struct {
	client *Client
	cache  *ListingCache
}

// NewGroups creates the group service. cache may be nil.
func NewGroups(client *Client, cache *ListingCache) *Groups {
	return &Groups{client: client, cache: cache}
}

// List enumerates all groups in the account
func (g *Groups) List(ctx context.Context) ([]Group, error) {
	if cached, ok := g.cache.Get("group.list"); ok {
		if groups, ok := cached.([]Group); ok {
			return groups, nil
		}
	}

	cmd := NewCommand("group").Sub("list")

	var groups []Group
	if err := g.client.Do(ctx, cmd, &groups); err != nil {
		return nil, cerr.Wrap(err, "failed to list groups")
	}

	g.cache.Set("group.list", groups)
	return groups, nil
}

// Get fetches full details for a group by ID or name
func (g *Groups) Get(ctx context.Context, groupID string) (*GroupDetails, error) {
	cmd := NewCommand("group").Sub("get").Arg(groupID)

	var details GroupDetails
	if err := g.client.Do(ctx, cmd, &details); err != nil {
		if isNotFound(err) {
			return nil, cerr.Wrapf(err, "group %s not found", groupID)
		}
		return nil, cerr.Wrapf(err, "failed to get group %s", groupID)
	}
	return &details, nil
}

// Create adds a new group, optionally with a description
func (g *Groups) Create(ctx context.Context, name, description string) (*GroupDetails, error) {
	cmd := NewCommand("group").Sub("create").Arg(name).OptionIf("description", description)

	var details GroupDetails
	if err := g.client.Do(ctx, cmd, &details); err != nil {
		return nil, cerr.Wrapf(err, "failed to create group %s", name)
	}

	g.cache.Invalidate("group.list")
	return &details, nil
}

// Delete removes a group
func (g *Groups) Delete(ctx context.Context, groupID string) error {
	cmd := NewCommand("group").Sub("delete").Arg(groupID).Raw()

	if err := g.client.Do(ctx, cmd, nil); err != nil {
		return cerr.Wrapf(err, "failed to delete group %s", groupID)
	}

	g.cache.Invalidate("group.list")
	return nil
}

// AddUser adds a user to a group
func (g *Groups) AddUser(ctx context.Context, groupID, userID string) error {
	cmd := NewCommand("group").Sub("user").Sub("add").Arg(userID).Arg(groupID).Raw()

	if err := g.client.Do(ctx, cmd, nil); err != nil {
		return cerr.Wrapf(err, "failed to add user %s to group %s", userID, groupID)
	}
	return nil
}

// RemoveUser removes a user from a group
func (g *Groups) RemoveUser(ctx context.Context, groupID, userID string) error {
	cmd := NewCommand("group").Sub("user").Sub("remove").Arg(userID).Arg(groupID).Raw()

	if err := g.client.Do(ctx, cmd, nil); err != nil {
		return cerr.Wrapf(err, "failed to remove user %s from group %s", userID, groupID)
	}
	return nil
}

func isNotFound(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
