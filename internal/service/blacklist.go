package service

import (
	"context"
	"errors"
	"time"

	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/model"
)

// BlacklistStore defines blacklist data access.
type BlacklistStore interface {
	Save(ctx context.Context, e *model.BlacklistEntry) error
	Get(ctx context.Context, id model.ClanID, jid model.JID) (*model.BlacklistEntry, error)
	Delete(ctx context.Context, id model.ClanID, jid model.JID) error
	List(ctx context.Context, id model.ClanID) ([]*model.BlacklistEntry, error)
	Count(ctx context.Context, id model.ClanID) (int, error)
}

// Blacklist manages a clan's ban entries. Recording an entry does not kick
// a current member; it only blocks future invites, requests and joins.
type Blacklist struct {
	store BlacklistStore
}

// NewBlacklist creates the blacklist component.
func NewBlacklist(store BlacklistStore) *Blacklist {
	return &Blacklist{store: store}
}

// Record adds target to the clan's blacklist. Caller holds the clan lock.
func (s *Blacklist) Record(ctx context.Context, clan *model.Clan, recordedBy, target model.JID, reason string) (*model.BlacklistEntry, error) {
	if len(reason) > model.MaxBlacklistReasonLength {
		return nil, ErrInvalidBody
	}

	_, err := s.store.Get(ctx, clan.ID, target)
	if err == nil {
		return nil, ErrAlreadyBlacklisted
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, storeErr(err)
	}

	n, err := s.store.Count(ctx, clan.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	if n >= model.MaxBlacklistEntries {
		return nil, ErrBlacklistFull
	}

	e := &model.BlacklistEntry{
		ClanID:     clan.ID,
		JID:        target,
		Reason:     reason,
		RecordedAt: time.Now().UTC(),
		RecordedBy: recordedBy,
	}
	if err := s.store.Save(ctx, e); err != nil {
		return nil, storeErr(err)
	}
	return e, nil
}

// Remove deletes target's blacklist entry.
func (s *Blacklist) Remove(ctx context.Context, clan *model.Clan, target model.JID) error {
	if _, err := s.store.Get(ctx, clan.ID, target); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrBlacklistEntryNotFound
		}
		return storeErr(err)
	}
	if err := s.store.Delete(ctx, clan.ID, target); err != nil {
		return storeErr(err)
	}
	return nil
}

// Entries lists the clan's blacklist.
func (s *Blacklist) Entries(ctx context.Context, id model.ClanID) ([]*model.BlacklistEntry, error) {
	entries, err := s.store.List(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return entries, nil
}
