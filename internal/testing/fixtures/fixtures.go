// Package fixtures provides test data factories for acceptance testing.
//
// Factories seed clan state directly through the engine, so every record
// carries the same invariants production writes do.
//
// Usage:
//
//	f := fixtures.New(engine)
//	clan := f.CreateClan(t, "castor")
//	f.AddMember(t, clan.ID, "castor", "pollux")
package fixtures

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/revival/clans/internal/model"
	"github.com/revival/clans/internal/service"
)

// Factory creates test entities through the engine
type Factory struct {
	engine *service.Engine
	seq    atomic.Uint64
}

// New creates a new fixture factory
func New(engine *service.Engine) *Factory {
	return &Factory{engine: engine}
}

// Claim builds the identity claim for a plain username.
func Claim(username string) *model.IdentityClaim {
	return &model.IdentityClaim{
		AccountID: 1,
		Username:  username,
		JID:       model.NewJID(username, "", ""),
	}
}

// CreateClan creates a clan owned by the given player. The clan name and
// tag are derived from a per-factory counter so tests never collide.
func (f *Factory) CreateClan(t *testing.T, owner string) *model.Clan {
	t.Helper()
	n := f.seq.Add(1)
	clan, err := f.engine.CreateClan(context.Background(), Claim(owner), service.CreateClanParams{
		Name: fmt.Sprintf("clan-%s-%d", owner, n),
		Tag:  fmt.Sprintf("T%03d", n%1000),
	})
	if err != nil {
		t.Fatalf("fixtures: create clan for %s: %v", owner, err)
	}
	return clan
}

// AddMember admits a player via invitation from an officer.
func (f *Factory) AddMember(t *testing.T, id model.ClanID, officer, username string) *model.Member {
	t.Helper()
	ctx := context.Background()
	if _, err := f.engine.SendInvitation(ctx, Claim(officer), id, Claim(username).JID); err != nil {
		t.Fatalf("fixtures: invite %s: %v", username, err)
	}
	m, err := f.engine.AcceptInvitation(ctx, Claim(username), id)
	if err != nil {
		t.Fatalf("fixtures: accept invitation for %s: %v", username, err)
	}
	return m
}

// PromoteSubLeader raises a member to sub-leader as the clan's leader.
func (f *Factory) PromoteSubLeader(t *testing.T, id model.ClanID, leader, username string) {
	t.Helper()
	err := f.engine.ChangeMemberRole(context.Background(), Claim(leader), id,
		Claim(username).JID, model.RoleSubLeader)
	if err != nil {
		t.Fatalf("fixtures: promote %s: %v", username, err)
	}
}

// Blacklist bans a player from the clan as the given officer.
func (f *Factory) Blacklist(t *testing.T, id model.ClanID, officer, username string) {
	t.Helper()
	_, err := f.engine.RecordBlacklistEntry(context.Background(), Claim(officer), id,
		Claim(username).JID, "")
	if err != nil {
		t.Fatalf("fixtures: blacklist %s: %v", username, err)
	}
}

// PostAnnouncement appends an announcement as the given officer.
func (f *Factory) PostAnnouncement(t *testing.T, id model.ClanID, officer, subject string) *model.Announcement {
	t.Helper()
	a, err := f.engine.PostAnnouncement(context.Background(), Claim(officer), id,
		service.PostAnnouncementParams{Subject: subject, Body: subject})
	if err != nil {
		t.Fatalf("fixtures: post announcement: %v", err)
	}
	return a
}
