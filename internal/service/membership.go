package service

import (
	"context"
	"errors"
	"time"

	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/model"
)

// MembershipStore defines the invitation and request data access the state
// machines need.
type MembershipStore interface {
	SaveInvitation(ctx context.Context, inv *model.Invitation) error
	GetInvitation(ctx context.Context, id model.ClanID, jid model.JID) (*model.Invitation, error)
	ListInvitations(ctx context.Context, id model.ClanID) ([]*model.Invitation, error)
	SaveRequest(ctx context.Context, req *model.MembershipRequest) error
	GetRequest(ctx context.Context, id model.ClanID, jid model.JID) (*model.MembershipRequest, error)
	ListRequests(ctx context.Context, id model.ClanID) ([]*model.MembershipRequest, error)
}

// BlacklistChecker is the read the state machines make before letting a
// player near a clan.
type BlacklistChecker interface {
	Get(ctx context.Context, id model.ClanID, jid model.JID) (*model.BlacklistEntry, error)
}

// Membership drives the invitation and membership-request state machines.
// Acceptance is the only path that adds members, and it runs with the clan
// lock held by the caller for the whole check-then-commit sequence.
//
// Terminal records are kept rather than deleted: a retried accept on an
// already-Accepted record succeeds again without re-adding the member,
// while decline or cancel of a non-Pending record fails ErrInvalidTransition.
type Membership struct {
	store     MembershipStore
	clans     ClanStore
	blacklist BlacklistChecker
	registry  *Registry
}

// NewMembership creates the membership state machine component.
func NewMembership(store MembershipStore, clans ClanStore, blacklist BlacklistChecker, registry *Registry) *Membership {
	return &Membership{store: store, clans: clans, blacklist: blacklist, registry: registry}
}

func (s *Membership) isBlacklisted(ctx context.Context, id model.ClanID, jid model.JID) (bool, error) {
	_, err := s.blacklist.Get(ctx, id, jid)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	return false, storeErr(err)
}

func (s *Membership) isMember(ctx context.Context, id model.ClanID, jid model.JID) (bool, error) {
	_, err := s.clans.GetMember(ctx, id, jid)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	return false, storeErr(err)
}

// admitChecks are the shared preconditions for letting jid approach the
// clan: not already a member, not blacklisted, and a capacity slot open.
// Pending invitations and requests do not count against capacity.
func (s *Membership) admitChecks(ctx context.Context, clan *model.Clan, jid model.JID) error {
	member, err := s.isMember(ctx, clan.ID, jid)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyInClan
	}
	banned, err := s.isBlacklisted(ctx, clan.ID, jid)
	if err != nil {
		return err
	}
	if banned {
		return ErrBlacklisted
	}
	n, err := s.clans.CountMembers(ctx, clan.ID)
	if err != nil {
		return storeErr(err)
	}
	if n >= clan.Capacity {
		return ErrClanFull
	}
	return nil
}

// SendInvitation creates a Pending invitation for invitee. A terminal
// record from an earlier flow is overwritten; a Pending one fails
// ErrAlreadyInvited.
func (s *Membership) SendInvitation(ctx context.Context, clan *model.Clan, inviter, invitee model.JID) (*model.Invitation, error) {
	if err := s.admitChecks(ctx, clan, invitee); err != nil {
		return nil, err
	}

	existing, err := s.store.GetInvitation(ctx, clan.ID, invitee)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, storeErr(err)
	}
	if existing != nil && existing.Status == model.RecordPending {
		return nil, ErrAlreadyInvited
	}

	inv := &model.Invitation{
		ClanID:    clan.ID,
		Inviter:   inviter,
		Invitee:   invitee,
		Status:    model.RecordPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveInvitation(ctx, inv); err != nil {
		return nil, storeErr(err)
	}
	return inv, nil
}

// CancelInvitation moves a Pending invitation to Cancelled.
func (s *Membership) CancelInvitation(ctx context.Context, clan *model.Clan, invitee model.JID) error {
	inv, err := s.store.GetInvitation(ctx, clan.ID, invitee)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrInvitationNotFound
		}
		return storeErr(err)
	}
	if inv.Status != model.RecordPending {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	inv.Status = model.RecordCancelled
	inv.DecidedAt = &now
	if err := s.store.SaveInvitation(ctx, inv); err != nil {
		return storeErr(err)
	}
	return nil
}

// AcceptInvitation admits the invitee. Accepting an already-Accepted
// invitation is idempotent and returns the existing member record.
func (s *Membership) AcceptInvitation(ctx context.Context, clan *model.Clan, invitee model.JID, onlineName string) (*model.Member, error) {
	inv, err := s.store.GetInvitation(ctx, clan.ID, invitee)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, storeErr(err)
	}
	switch inv.Status {
	case model.RecordPending:
		// fall through to admission
	case model.RecordAccepted:
		m, err := s.clans.GetMember(ctx, clan.ID, invitee)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, storeErr(err)
		}
		return m, nil
	default:
		return nil, ErrInvalidTransition
	}

	// The blacklist may have grown since the invitation was sent.
	banned, err := s.isBlacklisted(ctx, clan.ID, invitee)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, ErrBlacklisted
	}

	m, err := s.registry.AddMember(ctx, clan, invitee, onlineName)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	inv.Status = model.RecordAccepted
	inv.DecidedAt = &now
	if err := s.store.SaveInvitation(ctx, inv); err != nil {
		return nil, storeErr(err)
	}
	return m, nil
}

// DeclineInvitation moves a Pending invitation to Declined.
func (s *Membership) DeclineInvitation(ctx context.Context, clan *model.Clan, invitee model.JID) error {
	inv, err := s.store.GetInvitation(ctx, clan.ID, invitee)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrInvitationNotFound
		}
		return storeErr(err)
	}
	if inv.Status != model.RecordPending {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	inv.Status = model.RecordDeclined
	inv.DecidedAt = &now
	if err := s.store.SaveInvitation(ctx, inv); err != nil {
		return storeErr(err)
	}
	return nil
}

// RequestMembership creates a Pending membership request, symmetric to
// SendInvitation.
func (s *Membership) RequestMembership(ctx context.Context, clan *model.Clan, requester model.JID) (*model.MembershipRequest, error) {
	if err := s.admitChecks(ctx, clan, requester); err != nil {
		return nil, err
	}

	existing, err := s.store.GetRequest(ctx, clan.ID, requester)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, storeErr(err)
	}
	if existing != nil && existing.Status == model.RecordPending {
		return nil, ErrAlreadyRequested
	}

	req := &model.MembershipRequest{
		ClanID:    clan.ID,
		Requester: requester,
		Status:    model.RecordPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveRequest(ctx, req); err != nil {
		return nil, storeErr(err)
	}
	return req, nil
}

// CancelRequest moves a Pending request to Cancelled (requester's own act).
func (s *Membership) CancelRequest(ctx context.Context, clan *model.Clan, requester model.JID) error {
	req, err := s.store.GetRequest(ctx, clan.ID, requester)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrRequestNotFound
		}
		return storeErr(err)
	}
	if req.Status != model.RecordPending {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	req.Status = model.RecordCancelled
	req.DecidedAt = &now
	if err := s.store.SaveRequest(ctx, req); err != nil {
		return storeErr(err)
	}
	return nil
}

// AcceptRequest admits the requester. Idempotent on already-Accepted
// records, like AcceptInvitation.
func (s *Membership) AcceptRequest(ctx context.Context, clan *model.Clan, requester model.JID) (*model.Member, error) {
	req, err := s.store.GetRequest(ctx, clan.ID, requester)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, storeErr(err)
	}
	switch req.Status {
	case model.RecordPending:
	case model.RecordAccepted:
		m, err := s.clans.GetMember(ctx, clan.ID, requester)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, storeErr(err)
		}
		return m, nil
	default:
		return nil, ErrInvalidTransition
	}

	banned, err := s.isBlacklisted(ctx, clan.ID, requester)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, ErrBlacklisted
	}

	m, err := s.registry.AddMember(ctx, clan, requester, requester.Username())
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	req.Status = model.RecordAccepted
	req.DecidedAt = &now
	if err := s.store.SaveRequest(ctx, req); err != nil {
		return nil, storeErr(err)
	}
	return m, nil
}

// DeclineRequest moves a Pending request to Declined.
func (s *Membership) DeclineRequest(ctx context.Context, clan *model.Clan, requester model.JID) error {
	req, err := s.store.GetRequest(ctx, clan.ID, requester)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrRequestNotFound
		}
		return storeErr(err)
	}
	if req.Status != model.RecordPending {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	req.Status = model.RecordDeclined
	req.DecidedAt = &now
	if err := s.store.SaveRequest(ctx, req); err != nil {
		return storeErr(err)
	}
	return nil
}

// Join admits jid directly, without an invitation or request. Only clans
// that opted into auto-accept allow it.
func (s *Membership) Join(ctx context.Context, clan *model.Clan, jid model.JID, onlineName string) (*model.Member, error) {
	if !clan.AutoAccept {
		return nil, ErrPermissionDenied
	}
	if err := s.admitChecks(ctx, clan, jid); err != nil {
		return nil, err
	}
	return s.registry.AddMember(ctx, clan, jid, onlineName)
}

// Leave removes the member from their clan. The leader must transfer
// ownership or disband instead.
func (s *Membership) Leave(ctx context.Context, m *model.Member) error {
	if m.Role == model.RoleLeader {
		return ErrLeaderCannotLeave
	}
	return s.registry.RemoveMember(ctx, m)
}
