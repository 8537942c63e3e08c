package core

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jackm43/opsweep/internal/op"
)

// ItemSource is the narrow surface the searcher needs. op.Items
// implements it.
type ItemSource interface {
	List(ctx context.Context, vaultID string) ([]op.Item, error)
	Get(ctx context.Context, itemID string) (*op.Item, error)
}

// Match describes where a search term was found in an item
type Match struct {
	ItemID    string `json:"item_id"`
	Title     string `json:"title"`
	VaultID   string `json:"vault_id"`
	VaultName string `json:"vault_name"`
	Field     string `json:"field,omitempty"`
}

// Searcher scans item fields for a term across one or all vaults.
// Concealed field values are already filtered out at the op boundary, so
// matches never expose secrets.
type Searcher struct {
	items  ItemSource
	logger *zap.Logger
}

// NewSearcher creates a searcher over the given item source
func NewSearcher(items ItemSource, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{items: items, logger: logger}
}

// Search lists items (restricted to vaultID when non-empty), fetches each
// item's details sequentially, and reports matches. An item that fails to
// fetch is logged and skipped; the scan continues.
func (s *Searcher) Search(ctx context.Context, term, vaultID string) ([]Match, error) {
	overviews, err := s.items.List(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("scanning items",
		zap.Int("items", len(overviews)),
		zap.String("term", term),
		zap.String("vault", vaultID),
	)

	var matches []Match
	for _, overview := range overviews {
		item, err := s.items.Get(ctx, overview.ID)
		if err != nil {
			s.logger.Error("failed to fetch item, skipping",
				zap.String("item", overview.ID),
				zap.Error(err),
			)
			continue
		}

		if match, ok := matchItem(item, term); ok {
			matches = append(matches, match)
		}
	}

	return matches, nil
}

// matchItem checks the item title and every remaining field label/value
// for the term
func matchItem(item *op.Item, term string) (Match, bool) {
	match := Match{
		ItemID:    item.ID,
		Title:     item.Title,
		VaultID:   item.Vault.ID,
		VaultName: item.Vault.Name,
	}

	if strings.Contains(item.Title, term) {
		return match, true
	}

	for _, field := range item.Fields {
		if strings.Contains(field.Label, term) || strings.Contains(field.Value, term) {
			match.Field = field.Label
			return match, true
		}
	}

	return Match{}, false
}
