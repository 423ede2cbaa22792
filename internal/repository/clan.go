package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/model"
)

// ClanRepository handles clan and member data access.
type ClanRepository struct {
	store database.Store
}

// NewClanRepository creates a new clan repository.
func NewClanRepository(store database.Store) *ClanRepository {
	return &ClanRepository{store: store}
}

// NextID allocates the next clan id from the global counter.
func (r *ClanRepository) NextID(ctx context.Context) (model.ClanID, error) {
	n, err := r.store.Incr(ctx, clanSeqKey)
	if err != nil {
		return 0, err
	}
	return model.ClanID(n), nil
}

// ClaimName reserves the name uniqueness index for a clan. Returns false
// when another clan already holds the name.
func (r *ClanRepository) ClaimName(ctx context.Context, name string, id model.ClanID) (bool, error) {
	return r.store.PutIfAbsent(ctx, clanNameIndexKey(name), []byte(strconv.FormatUint(uint64(id), 10)))
}

// ClaimTag reserves the tag uniqueness index for a clan.
func (r *ClanRepository) ClaimTag(ctx context.Context, tag string, id model.ClanID) (bool, error) {
	return r.store.PutIfAbsent(ctx, clanTagIndexKey(tag), []byte(strconv.FormatUint(uint64(id), 10)))
}

// ReleaseName drops the name index entry.
func (r *ClanRepository) ReleaseName(ctx context.Context, name string) error {
	return r.store.Delete(ctx, clanNameIndexKey(name))
}

// ReleaseTag drops the tag index entry.
func (r *ClanRepository) ReleaseTag(ctx context.Context, tag string) error {
	return r.store.Delete(ctx, clanTagIndexKey(tag))
}

// Save writes the clan record.
func (r *ClanRepository) Save(ctx context.Context, clan *model.Clan) error {
	return putJSON(ctx, r.store, clanKey(clan.ID), clan)
}

// GetByID retrieves a clan, or database.ErrNotFound.
func (r *ClanRepository) GetByID(ctx context.Context, id model.ClanID) (*model.Clan, error) {
	var clan model.Clan
	if err := getJSON(ctx, r.store, clanKey(id), &clan); err != nil {
		return nil, err
	}
	return &clan, nil
}

// Delete removes the clan record, everything stored under it and its
// uniqueness indexes. Player claims and markers are the caller's concern.
func (r *ClanRepository) Delete(ctx context.Context, clan *model.Clan) error {
	if err := r.store.DeletePrefix(ctx, clanPrefix(clan.ID)); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, clanKey(clan.ID)); err != nil {
		return err
	}
	if err := r.ReleaseName(ctx, clan.Name); err != nil {
		return err
	}
	return r.ReleaseTag(ctx, clan.Tag)
}

// ListAll returns every clan record. Subordinate keys share the clan:
// prefix, so keys with more than one separator are skipped.
func (r *ClanRepository) ListAll(ctx context.Context) ([]*model.Clan, error) {
	kvs, err := r.store.List(ctx, "clan:")
	if err != nil {
		return nil, err
	}
	clans := make([]*model.Clan, 0, len(kvs))
	for _, kv := range kvs {
		if strings.Count(kv.Key, ":") != 1 {
			continue
		}
		var clan model.Clan
		if err := json.Unmarshal(kv.Value, &clan); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", kv.Key, err)
		}
		clans = append(clans, &clan)
	}
	return clans, nil
}

// SaveMember writes a member record.
func (r *ClanRepository) SaveMember(ctx context.Context, m *model.Member) error {
	return putJSON(ctx, r.store, memberKey(m.ClanID, m.JID), m)
}

// GetMember retrieves a member record, or database.ErrNotFound.
func (r *ClanRepository) GetMember(ctx context.Context, id model.ClanID, jid model.JID) (*model.Member, error) {
	var m model.Member
	if err := getJSON(ctx, r.store, memberKey(id, jid), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMember removes a member record.
func (r *ClanRepository) DeleteMember(ctx context.Context, id model.ClanID, jid model.JID) error {
	return r.store.Delete(ctx, memberKey(id, jid))
}

// ListMembers returns all members of a clan.
func (r *ClanRepository) ListMembers(ctx context.Context, id model.ClanID) ([]*model.Member, error) {
	kvs, err := r.store.List(ctx, memberPrefix(id))
	if err != nil {
		return nil, err
	}
	members := make([]*model.Member, 0, len(kvs))
	for _, kv := range kvs {
		var m model.Member
		if err := json.Unmarshal(kv.Value, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", kv.Key, err)
		}
		members = append(members, &m)
	}
	return members, nil
}

// CountMembers counts members of a clan.
func (r *ClanRepository) CountMembers(ctx context.Context, id model.ClanID) (int, error) {
	members, err := r.ListMembers(ctx, id)
	if err != nil {
		return 0, err
	}
	return len(members), nil
}

// ClaimPlayer atomically records that jid belongs to the given clan.
// Returns false when the player already belongs to a clan.
func (r *ClanRepository) ClaimPlayer(ctx context.Context, jid model.JID, id model.ClanID) (bool, error) {
	return r.store.PutIfAbsent(ctx, playerClaimKey(jid), []byte(strconv.FormatUint(uint64(id), 10)))
}

// ReleasePlayer drops the membership claim for jid.
func (r *ClanRepository) ReleasePlayer(ctx context.Context, jid model.JID) error {
	return r.store.Delete(ctx, playerClaimKey(jid))
}

// PlayerClan returns the clan jid belongs to, or database.ErrNotFound.
func (r *ClanRepository) PlayerClan(ctx context.Context, jid model.JID) (model.ClanID, error) {
	data, err := r.store.Get(ctx, playerClaimKey(jid))
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(string(data), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse claim for %s: %w", jid, err)
	}
	return model.ClanID(n), nil
}
