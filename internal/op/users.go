package op

import (
	"context"

	cerr "github.com/cockroachdb/errors"
)

// Users wraps the `op user` subcommand family
type Users struct {
	client *Client
}

// NewUsers creates the user service
func NewUsers(client *Client) *Users {
	return &Users{client: client}
}

// List enumerates users, optionally restricted to a vault or group
func (u *Users) List(ctx context.Context, vaultID, groupID string) ([]User, error) {
	cmd := NewCommand("user").Sub("list").
		OptionIf("vault", vaultID).
		OptionIf("group", groupID)

	var users []User
	if err := u.client.Do(ctx, cmd, &users); err != nil {
		return nil, cerr.Wrap(err, "failed to list users")
	}
	return users, nil
}

// Get fetches a single user by ID or email
func (u *Users) Get(ctx context.Context, userID string) (*User, error) {
	cmd := NewCommand("user").Sub("get").Arg(userID)

	var user User
	if err := u.client.Do(ctx, cmd, &user); err != nil {
		if isNotFound(err) {
			return nil, cerr.Wrapf(err, "user %s not found", userID)
		}
		return nil, cerr.Wrapf(err, "failed to get user %s", userID)
	}
	return &user, nil
}
