package service

import (
	"context"
	"errors"
	"time"

	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/model"
)

// AnnouncementStore defines announcement data access. List returns entries
// in ascending posting order.
type AnnouncementStore interface {
	Save(ctx context.Context, a *model.Announcement) error
	Get(ctx context.Context, id model.ClanID, seq uint64) (*model.Announcement, error)
	Delete(ctx context.Context, id model.ClanID, seq uint64) error
	List(ctx context.Context, id model.ClanID) ([]*model.Announcement, error)
}

// PostAnnouncementParams are the caller-supplied fields of a new
// announcement. TTL of zero falls back to the default retention window.
type PostAnnouncementParams struct {
	Subject string
	Body    string
	TTL     time.Duration
	BinData string
	FromID  uint32
}

// Announcements is the per-clan append-only announcement log: monotonic
// sequence numbers that survive deletion, bounded retention that evicts
// the oldest live entries, and cursor pagination by descending sequence.
type Announcements struct {
	store AnnouncementStore
	clans ClanStore
}

// NewAnnouncements creates the announcement log component.
func NewAnnouncements(store AnnouncementStore, clans ClanStore) *Announcements {
	return &Announcements{store: store, clans: clans}
}

// Post appends an announcement, assigning the clan's next sequence number.
// Beyond the retention cap the oldest live entries are evicted; higher
// sequences are always the ones retained. Caller holds the clan lock.
func (s *Announcements) Post(ctx context.Context, clan *model.Clan, author model.JID, p PostAnnouncementParams) (*model.Announcement, error) {
	if p.Subject == "" && p.Body == "" {
		return nil, ErrInvalidBody
	}
	if len(p.Subject) > model.MaxAnnouncementSubjectLength || len(p.Body) > model.MaxAnnouncementBodyLength {
		return nil, ErrInvalidBody
	}
	ttl := p.TTL
	if ttl <= 0 {
		ttl = model.DefaultAnnouncementTTL
	}

	clan.AnnouncementSeq++
	if err := s.clans.Save(ctx, clan); err != nil {
		return nil, storeErr(err)
	}

	now := time.Now().UTC()
	a := &model.Announcement{
		ClanID:    clan.ID,
		Seq:       clan.AnnouncementSeq,
		Subject:   p.Subject,
		Body:      p.Body,
		Author:    author,
		PostedAt:  now,
		ExpiresAt: now.Add(ttl),
		BinData:   p.BinData,
		FromID:    p.FromID,
	}
	if err := s.store.Save(ctx, a); err != nil {
		return nil, storeErr(err)
	}

	if err := s.evictBeyondCap(ctx, clan.ID, now); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Announcements) evictBeyondCap(ctx context.Context, id model.ClanID, now time.Time) error {
	all, err := s.store.List(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	live := 0
	for _, a := range all {
		if a.Live(now) {
			live++
		}
	}
	// List is ascending, so the first live entries are the oldest.
	for _, a := range all {
		if live <= model.MaxAnnouncementsPerClan {
			break
		}
		if !a.Live(now) {
			continue
		}
		if err := s.store.Delete(ctx, id, a.Seq); err != nil {
			return storeErr(err)
		}
		live--
	}
	return nil
}

// Remove tombstones an announcement. Sequence numbers are never reused and
// later entries keep their numbering.
func (s *Announcements) Remove(ctx context.Context, clan *model.Clan, seq uint64) error {
	a, err := s.store.Get(ctx, clan.ID, seq)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrAnnouncementNotFound
		}
		return storeErr(err)
	}
	if a.Deleted {
		return ErrAnnouncementNotFound
	}
	a.Deleted = true
	if err := s.store.Save(ctx, a); err != nil {
		return storeErr(err)
	}
	return nil
}

// Retrieve returns up to limit live announcements in descending sequence
// order, starting strictly below cursor; cursor zero starts from the
// newest. The cursor is a sequence number, so concurrent deletes never
// shift page boundaries.
func (s *Announcements) Retrieve(ctx context.Context, id model.ClanID, cursor uint64, limit int) ([]*model.Announcement, error) {
	all, err := s.store.List(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if limit <= 0 {
		limit = model.MaxAnnouncementsPerClan
	}

	now := time.Now().UTC()
	out := make([]*model.Announcement, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		a := all[i]
		if cursor != 0 && a.Seq >= cursor {
			continue
		}
		if !a.Live(now) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// SweepExpired physically removes expired and tombstoned announcements of
// one clan. Called by the background sweeper with the clan lock held.
// Returns the number of records purged.
func (s *Announcements) SweepExpired(ctx context.Context, id model.ClanID) (int, error) {
	all, err := s.store.List(ctx, id)
	if err != nil {
		return 0, storeErr(err)
	}
	now := time.Now().UTC()
	purged := 0
	for _, a := range all {
		if a.Live(now) {
			continue
		}
		if err := s.store.Delete(ctx, id, a.Seq); err != nil {
			return purged, storeErr(err)
		}
		purged++
	}
	return purged, nil
}
