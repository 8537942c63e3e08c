package op

import (
	"context"

	cerr "github.com/cockroachdb/errors"
)

// Items wraps the `op item` subcommand family
type Items struct {
	client *Client
}

// NewItems creates the item service
func NewItems(client *Client) *Items {
	return &Items{client: client}
}

// List enumerates items, optionally restricted to a vault. Listings carry
// overview data only; use Get for field details.
func (i *Items) List(ctx context.Context, vaultID string) ([]Item, error) {
	cmd := NewCommand("item").Sub("list").OptionIf("vault", vaultID)

	var items []Item
	if err := i.client.Do(ctx, cmd, &items); err != nil {
		return nil, cerr.Wrap(err, "failed to list items")
	}
	return items, nil
}

// Get fetches a single item with full field details. Concealed fields are
// filtered during decode.
func (i *Items) Get(ctx context.Context, itemID string) (*Item, error) {
	cmd := NewCommand("item").Sub("get").Arg(itemID)

	var item Item
	if err := i.client.Do(ctx, cmd, &item); err != nil {
		if isNotFound(err) {
			return nil, cerr.Wrapf(err, "item %s not found", itemID)
		}
		return nil, cerr.Wrapf(err, "failed to get item %s", itemID)
	}
	return &item, nil
}
