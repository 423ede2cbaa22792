package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/revival/clans/internal/model"
)

// expected filters the domain errors a random operation is allowed to hit;
// anything else fails the property.
func expected(t *rapid.T, err error, allowed ...error) {
	if err == nil {
		return
	}
	for _, a := range allowed {
		if errors.Is(err, a) {
			return
		}
	}
	t.Fatalf("unexpected error: %v", err)
}

// Random walks over one clan's membership operations keep the capacity
// and single-membership invariants at every step.
func TestMembershipInvariantsUnderRandomOps(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		e := newTestEngine()
		leader := claimFor("lead")

		capacity := rapid.IntRange(1, 6).Draw(rt, "capacity")
		clan, err := e.CreateClan(ctx, leader, CreateClanParams{
			Name: "Red", Tag: "RED", Capacity: capacity, AutoAccept: true,
		})
		if err != nil {
			rt.Fatalf("create: %v", err)
		}

		players := make([]*model.IdentityClaim, 8)
		for i := range players {
			players[i] = claimFor(fmt.Sprintf("p%d", i))
		}
		pick := rapid.SampledFrom(players)

		rt.Repeat(map[string]func(*rapid.T){
			"join": func(rt *rapid.T) {
				_, err := e.JoinClan(ctx, pick.Draw(rt, "p"), clan.ID)
				expected(rt, err, ErrAlreadyInClan, ErrClanFull, ErrBlacklisted)
			},
			"leave": func(rt *rapid.T) {
				err := e.LeaveClan(ctx, pick.Draw(rt, "p"), clan.ID)
				expected(rt, err, ErrNotAMember, ErrLeaderCannotLeave)
			},
			"invite": func(rt *rapid.T) {
				_, err := e.SendInvitation(ctx, leader, clan.ID, pick.Draw(rt, "p").JID)
				expected(rt, err, ErrAlreadyInClan, ErrAlreadyInvited, ErrClanFull, ErrBlacklisted)
			},
			"acceptInvite": func(rt *rapid.T) {
				_, err := e.AcceptInvitation(ctx, pick.Draw(rt, "p"), clan.ID)
				expected(rt, err, ErrInvitationNotFound, ErrInvalidTransition,
					ErrAlreadyInClan, ErrClanFull, ErrBlacklisted)
			},
			"request": func(rt *rapid.T) {
				_, err := e.RequestMembership(ctx, pick.Draw(rt, "p"), clan.ID)
				expected(rt, err, ErrAlreadyInClan, ErrAlreadyRequested, ErrClanFull, ErrBlacklisted)
			},
			"acceptRequest": func(rt *rapid.T) {
				_, err := e.AcceptMembershipRequest(ctx, leader, clan.ID, pick.Draw(rt, "p").JID)
				expected(rt, err, ErrRequestNotFound, ErrInvalidTransition,
					ErrAlreadyInClan, ErrClanFull, ErrBlacklisted)
			},
			"kick": func(rt *rapid.T) {
				err := e.KickMember(ctx, leader, clan.ID, pick.Draw(rt, "p").JID)
				expected(rt, err, ErrMemberNotFound)
			},
			"blacklist": func(rt *rapid.T) {
				_, err := e.RecordBlacklistEntry(ctx, leader, clan.ID, pick.Draw(rt, "p").JID, "prop")
				expected(rt, err, ErrAlreadyBlacklisted, ErrBlacklistFull)
			},
			"": func(rt *rapid.T) {
				info, err := e.GetClanInfo(ctx, clan.ID)
				if err != nil {
					rt.Fatalf("info: %v", err)
				}
				if info.MemberCount > capacity {
					rt.Fatalf("capacity violated: %d members, capacity %d", info.MemberCount, capacity)
				}
				for _, p := range players {
					views, err := e.GetClanList(ctx, p)
					if err != nil {
						rt.Fatalf("clan list: %v", err)
					}
					member := 0
					for _, v := range views {
						if v.Status == model.StatusMember {
							member++
						}
					}
					if member > 1 {
						rt.Fatalf("%s is a member of %d clans", p.Username, member)
					}
				}
			},
		})
	})
}

// Announcement sequences stay strictly increasing under random posts and
// deletes, and retrieval order is always descending.
func TestAnnouncementOrderingUnderRandomOps(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		e := newTestEngine()
		leader := claimFor("lead")

		clan, err := e.CreateClan(ctx, leader, CreateClanParams{Name: "Red", Tag: "RED"})
		if err != nil {
			rt.Fatalf("create: %v", err)
		}

		var lastSeq uint64

		rt.Repeat(map[string]func(*rapid.T){
			"post": func(rt *rapid.T) {
				a, err := e.PostAnnouncement(ctx, leader, clan.ID, PostAnnouncementParams{
					Subject: rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, "subject"),
				})
				if err != nil {
					rt.Fatalf("post: %v", err)
				}
				if a.Seq <= lastSeq {
					rt.Fatalf("sequence reused: %d after %d", a.Seq, lastSeq)
				}
				lastSeq = a.Seq
			},
			"delete": func(rt *rapid.T) {
				if lastSeq == 0 {
					return
				}
				seq := rapid.Uint64Range(1, lastSeq).Draw(rt, "seq")
				err := e.DeleteAnnouncement(ctx, leader, clan.ID, seq)
				expected(rt, err, ErrAnnouncementNotFound)
			},
			"": func(rt *rapid.T) {
				page, err := e.RetrieveAnnouncements(ctx, leader, clan.ID, 0, 100)
				if err != nil {
					rt.Fatalf("retrieve: %v", err)
				}
				for i := 1; i < len(page); i++ {
					if page[i].Seq >= page[i-1].Seq {
						rt.Fatalf("not descending at %d: %d then %d", i, page[i-1].Seq, page[i].Seq)
					}
				}
			},
		})
	})
}
