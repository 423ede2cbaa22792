package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/model"
)

// AnnouncementRepository handles clan announcements. Keys embed a
// zero-padded sequence number, so prefix listings come back in posting
// order.
type AnnouncementRepository struct {
	store database.Store
}

// NewAnnouncementRepository creates a new announcement repository.
func NewAnnouncementRepository(store database.Store) *AnnouncementRepository {
	return &AnnouncementRepository{store: store}
}

// Save writes an announcement.
func (r *AnnouncementRepository) Save(ctx context.Context, a *model.Announcement) error {
	return putJSON(ctx, r.store, announcementKey(a.ClanID, a.Seq), a)
}

// Get retrieves an announcement by sequence, or database.ErrNotFound.
func (r *AnnouncementRepository) Get(ctx context.Context, id model.ClanID, seq uint64) (*model.Announcement, error) {
	var a model.Announcement
	if err := getJSON(ctx, r.store, announcementKey(id, seq), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id model.ClanID, seq uint64) error {
	return r.store.Delete(ctx, announcementKey(id, seq))
}

// List returns all announcements of a clan in posting order.
func (r *AnnouncementRepository) List(ctx context.Context, id model.ClanID) ([]*model.Announcement, error) {
	kvs, err := r.store.List(ctx, announcementPrefix(id))
	if err != nil {
		return nil, err
	}
	anns := make([]*model.Announcement, 0, len(kvs))
	for _, kv := range kvs {
		var a model.Announcement
		if err := json.Unmarshal(kv.Value, &a); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", kv.Key, err)
		}
		anns = append(anns, &a)
	}
	return anns, nil
}
