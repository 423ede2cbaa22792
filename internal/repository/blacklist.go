package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/model"
)

// BlacklistRepository handles clan blacklist entries.
type BlacklistRepository struct {
	store database.Store
}

// NewBlacklistRepository creates a new blacklist repository.
func NewBlacklistRepository(store database.Store) *BlacklistRepository {
	return &BlacklistRepository{store: store}
}

// Save writes a blacklist entry.
func (r *BlacklistRepository) Save(ctx context.Context, e *model.BlacklistEntry) error {
	return putJSON(ctx, r.store, blacklistKey(e.ClanID, e.JID), e)
}

// Get retrieves the blacklist entry for jid, or database.ErrNotFound.
func (r *BlacklistRepository) Get(ctx context.Context, id model.ClanID, jid model.JID) (*model.BlacklistEntry, error) {
	var e model.BlacklistEntry
	if err := getJSON(ctx, r.store, blacklistKey(id, jid), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes a blacklist entry.
func (r *BlacklistRepository) Delete(ctx context.Context, id model.ClanID, jid model.JID) error {
	return r.store.Delete(ctx, blacklistKey(id, jid))
}

// List returns all blacklist entries of a clan.
func (r *BlacklistRepository) List(ctx context.Context, id model.ClanID) ([]*model.BlacklistEntry, error) {
	kvs, err := r.store.List(ctx, blacklistPrefix(id))
	if err != nil {
		return nil, err
	}
	entries := make([]*model.BlacklistEntry, 0, len(kvs))
	for _, kv := range kvs {
		var e model.BlacklistEntry
		if err := json.Unmarshal(kv.Value, &e); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", kv.Key, err)
		}
		entries = append(entries, &e)
	}
	return entries, nil
}

// Count counts blacklist entries of a clan.
func (r *BlacklistRepository) Count(ctx context.Context, id model.ClanID) (int, error) {
	entries, err := r.List(ctx, id)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
