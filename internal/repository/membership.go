package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/model"
)

// MembershipRepository handles invitation and membership request records,
// including the player-side marker keys used for player-perspective
// listings.
type MembershipRepository struct {
	store database.Store
}

// NewMembershipRepository creates a new membership repository.
func NewMembershipRepository(store database.Store) *MembershipRepository {
	return &MembershipRepository{store: store}
}

// SaveInvitation writes an invitation and its player-side marker.
func (r *MembershipRepository) SaveInvitation(ctx context.Context, inv *model.Invitation) error {
	if err := putJSON(ctx, r.store, inviteKey(inv.ClanID, inv.Invitee), inv); err != nil {
		return err
	}
	if inv.Status == model.RecordPending {
		return r.store.Put(ctx, playerInviteKey(inv.Invitee, inv.ClanID), []byte("1"))
	}
	return r.store.Delete(ctx, playerInviteKey(inv.Invitee, inv.ClanID))
}

// GetInvitation retrieves the invitation for jid, or database.ErrNotFound.
func (r *MembershipRepository) GetInvitation(ctx context.Context, id model.ClanID, jid model.JID) (*model.Invitation, error) {
	var inv model.Invitation
	if err := getJSON(ctx, r.store, inviteKey(id, jid), &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// DeleteInvitation removes an invitation and its marker.
func (r *MembershipRepository) DeleteInvitation(ctx context.Context, id model.ClanID, jid model.JID) error {
	if err := r.store.Delete(ctx, inviteKey(id, jid)); err != nil {
		return err
	}
	return r.store.Delete(ctx, playerInviteKey(jid, id))
}

// ListInvitations returns all invitation records of a clan.
func (r *MembershipRepository) ListInvitations(ctx context.Context, id model.ClanID) ([]*model.Invitation, error) {
	kvs, err := r.store.List(ctx, invitePrefix(id))
	if err != nil {
		return nil, err
	}
	invs := make([]*model.Invitation, 0, len(kvs))
	for _, kv := range kvs {
		var inv model.Invitation
		if err := json.Unmarshal(kv.Value, &inv); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", kv.Key, err)
		}
		invs = append(invs, &inv)
	}
	return invs, nil
}

// SaveRequest writes a membership request and its player-side marker.
func (r *MembershipRepository) SaveRequest(ctx context.Context, req *model.MembershipRequest) error {
	if err := putJSON(ctx, r.store, requestKey(req.ClanID, req.Requester), req); err != nil {
		return err
	}
	if req.Status == model.RecordPending {
		return r.store.Put(ctx, playerRequestKey(req.Requester, req.ClanID), []byte("1"))
	}
	return r.store.Delete(ctx, playerRequestKey(req.Requester, req.ClanID))
}

// GetRequest retrieves the membership request for jid, or database.ErrNotFound.
func (r *MembershipRepository) GetRequest(ctx context.Context, id model.ClanID, jid model.JID) (*model.MembershipRequest, error) {
	var req model.MembershipRequest
	if err := getJSON(ctx, r.store, requestKey(id, jid), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// DeleteRequest removes a membership request and its marker.
func (r *MembershipRepository) DeleteRequest(ctx context.Context, id model.ClanID, jid model.JID) error {
	if err := r.store.Delete(ctx, requestKey(id, jid)); err != nil {
		return err
	}
	return r.store.Delete(ctx, playerRequestKey(jid, id))
}

// ListRequests returns all membership request records of a clan.
func (r *MembershipRepository) ListRequests(ctx context.Context, id model.ClanID) ([]*model.MembershipRequest, error) {
	kvs, err := r.store.List(ctx, requestPrefix(id))
	if err != nil {
		return nil, err
	}
	reqs := make([]*model.MembershipRequest, 0, len(kvs))
	for _, kv := range kvs {
		var req model.MembershipRequest
		if err := json.Unmarshal(kv.Value, &req); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", kv.Key, err)
		}
		reqs = append(reqs, &req)
	}
	return reqs, nil
}

// PlayerInvitedClans returns the clans jid holds a pending invitation from.
func (r *MembershipRepository) PlayerInvitedClans(ctx context.Context, jid model.JID) ([]model.ClanID, error) {
	return r.markerClans(ctx, playerInvitePrefix(jid))
}

// PlayerRequestedClans returns the clans jid has a pending request to.
func (r *MembershipRepository) PlayerRequestedClans(ctx context.Context, jid model.JID) ([]model.ClanID, error) {
	return r.markerClans(ctx, playerRequestPrefix(jid))
}

// ClearPlayerMarkers removes every player-side invite and request marker
// for jid. Used when a player joins a clan and stale markers elsewhere
// should no longer surface in listings.
func (r *MembershipRepository) ClearPlayerMarkers(ctx context.Context, jid model.JID) error {
	if err := r.store.DeletePrefix(ctx, playerInvitePrefix(jid)); err != nil {
		return err
	}
	return r.store.DeletePrefix(ctx, playerRequestPrefix(jid))
}

func (r *MembershipRepository) markerClans(ctx context.Context, prefix string) ([]model.ClanID, error) {
	kvs, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	ids := make([]model.ClanID, 0, len(kvs))
	for _, kv := range kvs {
		var id uint32
		if _, err := fmt.Sscanf(kv.Key[len(prefix):], "%d", &id); err != nil {
			return nil, fmt.Errorf("parse marker %s: %w", kv.Key, err)
		}
		ids = append(ids, model.ClanID(id))
	}
	return ids, nil
}
