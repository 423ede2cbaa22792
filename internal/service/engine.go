package service

import (
	"context"
	"errors"
	"sort"

	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/model"
)

// Engine is the single entry point the transport layer calls. Every
// operation resolves the identity claim to an actor, consults the
// authorizer, takes the per-clan lock for its whole check-then-commit
// span, delegates to the owning component, and propagates the first error
// unchanged. Authorization is never bypassed because nothing else reaches
// the components.
type Engine struct {
	registry      *Registry
	membership    *Membership
	blacklist     *Blacklist
	announcements *Announcements
	clans         ClanStore
	auth          *Authorizer
	locks         *clanLocks
}

// EngineConfig wires the engine's components.
type EngineConfig struct {
	Registry      *Registry
	Membership    *Membership
	Blacklist     *Blacklist
	Announcements *Announcements
	Clans         ClanStore
}

// NewEngine creates the orchestrating engine.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		registry:      cfg.Registry,
		membership:    cfg.Membership,
		blacklist:     cfg.Blacklist,
		announcements: cfg.Announcements,
		clans:         cfg.Clans,
		auth:          NewAuthorizer(),
		locks:         newClanLocks(),
	}
}

// loadClan fetches the clan, mapping absence to ErrClanNotFound. Must be
// called with the clan lock held so the snapshot stays valid for the
// operation.
func (e *Engine) loadClan(ctx context.Context, id model.ClanID) (*model.Clan, error) {
	return e.registry.Get(ctx, id)
}

// actor resolves the claim to the clan member performing the operation.
func (e *Engine) actor(ctx context.Context, id model.ClanID, jid model.JID) (*model.Member, error) {
	m, err := e.clans.GetMember(ctx, id, jid)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotAMember
		}
		return nil, storeErr(err)
	}
	return m, nil
}

// ===== Clan lifecycle =====

// CreateClan creates a clan owned by the claimant.
func (e *Engine) CreateClan(ctx context.Context, claim *model.IdentityClaim, p CreateClanParams) (*model.Clan, error) {
	return e.registry.Create(ctx, claim.JID, claim.Username, p)
}

// AdminCreateClan creates a clan on behalf of a player named by plain
// username; the JID is forged with the default domain and region. A player
// already leading model.MaxClanOwnership clans is refused before the
// one-clan claim is attempted, so the caller sees the leader limit rather
// than a generic membership conflict.
func (e *Engine) AdminCreateClan(ctx context.Context, username string, p CreateClanParams) (*model.Clan, error) {
	jid := model.NewJID(username, "", "")

	if id, err := e.clans.PlayerClan(ctx, jid); err == nil {
		m, err := e.clans.GetMember(ctx, id, jid)
		if err == nil && m.Role == model.RoleLeader {
			return nil, ErrOwnershipLimitReached
		}
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, storeErr(err)
		}
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, storeErr(err)
	}

	return e.registry.Create(ctx, jid, username, p)
}

// GetClanInfo returns a clan with its member count. No ticket required.
func (e *Engine) GetClanInfo(ctx context.Context, id model.ClanID) (*model.ClanInfoView, error) {
	unlock := e.locks.lock(id)
	defer unlock()
	return e.registry.Info(ctx, id)
}

// GetClanList reports every clan the claimant has a standing toward.
// Touches many clans, so it reads without a clan lock; each underlying
// read is individually consistent.
func (e *Engine) GetClanList(ctx context.Context, claim *model.IdentityClaim) ([]*model.ClanMembershipView, error) {
	return e.registry.ClanListFor(ctx, claim.JID)
}

// UpdateClanInfo applies partial clan updates. Renames (name or tag) are
// reserved to the leader; other fields need sub-leader rank.
func (e *Engine) UpdateClanInfo(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, p UpdateClanInfoParams) error {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return err
	}
	action := ActionUpdateClanInfo
	if p.Name != nil || p.Tag != nil {
		action = ActionRenameClan
	}
	if err := e.auth.Can(actor.Role, action); err != nil {
		return err
	}
	return e.registry.UpdateInfo(ctx, clan, p)
}

// DisbandClan removes the clan and all dependent records.
func (e *Engine) DisbandClan(ctx context.Context, claim *model.IdentityClaim, id model.ClanID) error {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return err
	}
	if err := e.auth.Can(actor.Role, ActionDisbandClan); err != nil {
		return err
	}
	if err := e.registry.Disband(ctx, clan); err != nil {
		return err
	}
	e.locks.forget(id)
	return nil
}

// JoinClan admits the claimant directly into an auto-accept clan.
func (e *Engine) JoinClan(ctx context.Context, claim *model.IdentityClaim, id model.ClanID) (*model.Member, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.membership.Join(ctx, clan, claim.JID, claim.Username)
}

// LeaveClan removes the claimant from the clan.
func (e *Engine) LeaveClan(ctx context.Context, claim *model.IdentityClaim, id model.ClanID) error {
	unlock := e.locks.lock(id)
	defer unlock()

	if _, err := e.loadClan(ctx, id); err != nil {
		return err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return err
	}
	return e.membership.Leave(ctx, actor)
}

// ===== Members =====

// GetMemberList returns the clan's roster: current members in join order,
// then players with a pending invitation or membership request. Members
// only.
func (e *Engine) GetMemberList(ctx context.Context, claim *model.IdentityClaim, id model.ClanID) ([]*model.MemberListEntry, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	if _, err := e.loadClan(ctx, id); err != nil {
		return nil, err
	}
	if _, err := e.actor(ctx, id, claim.JID); err != nil {
		return nil, err
	}

	members, err := e.clans.ListMembers(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	sortMembersByJoin(members)

	entries := make([]*model.MemberListEntry, 0, len(members))
	for _, m := range members {
		entries = append(entries, &model.MemberListEntry{
			JID:         m.JID,
			Role:        m.Role,
			Status:      model.StatusMember,
			OnlineName:  m.OnlineName,
			Description: m.Description,
			AllowMsg:    m.AllowMsg,
		})
	}

	invs, err := e.membership.store.ListInvitations(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	for _, inv := range invs {
		if inv.Status != model.RecordPending {
			continue
		}
		entries = append(entries, &model.MemberListEntry{
			JID:        inv.Invitee,
			Role:       model.RoleNonMember,
			Status:     model.StatusInvited,
			OnlineName: inv.Invitee.Username(),
		})
	}
	reqs, err := e.membership.store.ListRequests(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	for _, req := range reqs {
		if req.Status != model.RecordPending {
			continue
		}
		entries = append(entries, &model.MemberListEntry{
			JID:        req.Requester,
			Role:       model.RoleNonMember,
			Status:     model.StatusPending,
			OnlineName: req.Requester.Username(),
		})
	}
	return entries, nil
}

// GetMemberInfo returns one member record. Members only.
func (e *Engine) GetMemberInfo(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, target model.JID) (*model.Member, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	if _, err := e.loadClan(ctx, id); err != nil {
		return nil, err
	}
	if _, err := e.actor(ctx, id, claim.JID); err != nil {
		return nil, err
	}
	m, err := e.clans.GetMember(ctx, id, target)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, storeErr(err)
	}
	return m, nil
}

// UpdateMemberInfoParams carries partial member-profile updates; nil
// fields are left untouched.
type UpdateMemberInfoParams struct {
	OnlineName  *string
	Description *string
	AllowMsg    *bool
}

// UpdateMemberInfo updates the claimant's own member profile.
func (e *Engine) UpdateMemberInfo(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, p UpdateMemberInfoParams) (*model.Member, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	if _, err := e.loadClan(ctx, id); err != nil {
		return nil, err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return nil, err
	}
	if p.Description != nil && len(*p.Description) > model.MaxClanDescLength {
		return nil, ErrInvalidBody
	}
	if p.OnlineName != nil {
		actor.OnlineName = *p.OnlineName
	}
	if p.Description != nil {
		actor.Description = *p.Description
	}
	if p.AllowMsg != nil {
		actor.AllowMsg = *p.AllowMsg
	}
	if err := e.clans.SaveMember(ctx, actor); err != nil {
		return nil, storeErr(err)
	}
	return actor, nil
}

// ChangeMemberRole assigns a new role to target. Assigning Leader is
// ownership transfer: the old leader is demoted to sub-leader in the same
// locked operation.
func (e *Engine) ChangeMemberRole(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, target model.JID, newRole model.Role) error {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return err
	}
	tm, err := e.clans.GetMember(ctx, id, target)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrMemberNotFound
		}
		return storeErr(err)
	}
	if err := e.auth.CanAssignRole(actor.Role, tm.Role, newRole); err != nil {
		return err
	}

	if newRole == model.RoleLeader {
		actor.Role = model.RoleSubLeader
		if err := e.clans.SaveMember(ctx, actor); err != nil {
			return storeErr(err)
		}
		clan.OwnerJID = target
		if err := e.clans.Save(ctx, clan); err != nil {
			return storeErr(err)
		}
	}
	tm.Role = newRole
	if err := e.clans.SaveMember(ctx, tm); err != nil {
		return storeErr(err)
	}
	return nil
}

// KickMember removes target from the clan. The target must rank strictly
// below the actor.
func (e *Engine) KickMember(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, target model.JID) error {
	unlock := e.locks.lock(id)
	defer unlock()

	if _, err := e.loadClan(ctx, id); err != nil {
		return err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return err
	}
	tm, err := e.clans.GetMember(ctx, id, target)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrMemberNotFound
		}
		return storeErr(err)
	}
	if err := e.auth.CanKick(actor.Role, tm.Role); err != nil {
		return err
	}
	return e.registry.RemoveMember(ctx, tm)
}

// ===== Invitations =====

// SendInvitation invites a player into the clan. Sub-leader rank required.
func (e *Engine) SendInvitation(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, invitee model.JID) (*model.Invitation, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return nil, err
	}
	if err := e.auth.Can(actor.Role, ActionSendInvitation); err != nil {
		return nil, err
	}
	return e.membership.SendInvitation(ctx, clan, actor.JID, invitee)
}

// CancelInvitation withdraws a pending invitation.
func (e *Engine) CancelInvitation(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, invitee model.JID) error {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return err
	}
	if err := e.auth.Can(actor.Role, ActionCancelInvitation); err != nil {
		return err
	}
	return e.membership.CancelInvitation(ctx, clan, invitee)
}

// AcceptInvitation accepts the claimant's own pending invitation and joins
// the clan. Idempotent on retries.
func (e *Engine) AcceptInvitation(ctx context.Context, claim *model.IdentityClaim, id model.ClanID) (*model.Member, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.membership.AcceptInvitation(ctx, clan, claim.JID, claim.Username)
}

// DeclineInvitation declines the claimant's own pending invitation.
func (e *Engine) DeclineInvitation(ctx context.Context, claim *model.IdentityClaim, id model.ClanID) error {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return err
	}
	return e.membership.DeclineInvitation(ctx, clan, claim.JID)
}

// ===== Membership requests =====

// RequestMembership files the claimant's request to join the clan.
func (e *Engine) RequestMembership(ctx context.Context, claim *model.IdentityClaim, id model.ClanID) (*model.MembershipRequest, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.membership.RequestMembership(ctx, clan, claim.JID)
}

// CancelMembershipRequest withdraws the claimant's own pending request.
func (e *Engine) CancelMembershipRequest(ctx context.Context, claim *model.IdentityClaim, id model.ClanID) error {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return err
	}
	return e.membership.CancelRequest(ctx, clan, claim.JID)
}

// AcceptMembershipRequest approves a pending request and admits the
// requester. Sub-leader rank required; idempotent on retries.
func (e *Engine) AcceptMembershipRequest(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, requester model.JID) (*model.Member, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return nil, err
	}
	if err := e.auth.Can(actor.Role, ActionDecideRequest); err != nil {
		return nil, err
	}
	return e.membership.AcceptRequest(ctx, clan, requester)
}

// DeclineMembershipRequest rejects a pending request.
func (e *Engine) DeclineMembershipRequest(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, requester model.JID) error {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return err
	}
	if err := e.auth.Can(actor.Role, ActionDecideRequest); err != nil {
		return err
	}
	return e.membership.DeclineRequest(ctx, clan, requester)
}

// ===== Blacklist =====

// GetBlacklist lists the clan's ban entries. Members only.
func (e *Engine) GetBlacklist(ctx context.Context, claim *model.IdentityClaim, id model.ClanID) ([]*model.BlacklistEntry, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	if _, err := e.loadClan(ctx, id); err != nil {
		return nil, err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return nil, err
	}
	if err := e.auth.Can(actor.Role, ActionViewBlacklist); err != nil {
		return nil, err
	}
	return e.blacklist.Entries(ctx, id)
}

// RecordBlacklistEntry bans a player from future invites, requests and
// joins. A current member is not auto-kicked.
func (e *Engine) RecordBlacklistEntry(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, target model.JID, reason string) (*model.BlacklistEntry, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return nil, err
	}
	if err := e.auth.Can(actor.Role, ActionRecordBlacklist); err != nil {
		return nil, err
	}
	return e.blacklist.Record(ctx, clan, actor.JID, target, reason)
}

// DeleteBlacklistEntry lifts a ban.
func (e *Engine) DeleteBlacklistEntry(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, target model.JID) error {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return err
	}
	if err := e.auth.Can(actor.Role, ActionDeleteBlacklist); err != nil {
		return err
	}
	return e.blacklist.Remove(ctx, clan, target)
}

// ===== Announcements =====

// RetrieveAnnouncements pages through the clan's live announcements in
// descending sequence order. Members only.
func (e *Engine) RetrieveAnnouncements(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, cursor uint64, limit int) ([]*model.Announcement, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	if _, err := e.loadClan(ctx, id); err != nil {
		return nil, err
	}
	if _, err := e.actor(ctx, id, claim.JID); err != nil {
		return nil, err
	}
	return e.announcements.Retrieve(ctx, id, cursor, limit)
}

// PostAnnouncement appends an announcement. Sub-leader rank required.
func (e *Engine) PostAnnouncement(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, p PostAnnouncementParams) (*model.Announcement, error) {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return nil, err
	}
	if err := e.auth.Can(actor.Role, ActionPostAnnouncement); err != nil {
		return nil, err
	}
	return e.announcements.Post(ctx, clan, actor.JID, p)
}

// DeleteAnnouncement tombstones an announcement. Sub-leader rank required.
func (e *Engine) DeleteAnnouncement(ctx context.Context, claim *model.IdentityClaim, id model.ClanID, seq uint64) error {
	unlock := e.locks.lock(id)
	defer unlock()

	clan, err := e.loadClan(ctx, id)
	if err != nil {
		return err
	}
	actor, err := e.actor(ctx, id, claim.JID)
	if err != nil {
		return err
	}
	if err := e.auth.Can(actor.Role, ActionDeleteAnnouncement); err != nil {
		return err
	}
	return e.announcements.Remove(ctx, clan, seq)
}

// SweepExpiredAnnouncements purges expired and tombstoned announcements
// across all clans, taking each clan's lock in turn. Used by the
// background sweeper. Returns the total number of records purged.
func (e *Engine) SweepExpiredAnnouncements(ctx context.Context) (int, error) {
	clans, err := e.clans.ListAll(ctx)
	if err != nil {
		return 0, storeErr(err)
	}
	total := 0
	for _, clan := range clans {
		unlock := e.locks.lock(clan.ID)
		n, err := e.announcements.SweepExpired(ctx, clan.ID)
		unlock()
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func sortMembersByJoin(members []*model.Member) {
	sort.Slice(members, func(i, j int) bool {
		return members[i].JoinSeq < members[j].JoinSeq
	})
}
