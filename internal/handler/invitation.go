package handler

import (
	"net/http"
	"time"

	"github.com/revival/clans/internal/middleware"
	"github.com/revival/clans/internal/model"
)

// SendInvitation invites a player into the caller's clan.
func (h *Clan) SendInvitation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	_, err := h.engine.SendInvitation(r.Context(), identity(r), req.TargetClan(), model.JID(req.JID))
	respond(w, r, "send_invitation", start, "", err)
}

// CancelInvitation withdraws a pending invitation.
func (h *Clan) CancelInvitation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	err := h.engine.CancelInvitation(r.Context(), identity(r), req.TargetClan(), model.JID(req.JID))
	respond(w, r, "cancel_invitation", start, "", err)
}

// AcceptInvitation accepts the caller's own pending invitation.
func (h *Clan) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	_, err := h.engine.AcceptInvitation(r.Context(), identity(r), req.TargetClan())
	respond(w, r, "accept_invitation", start, "", err)
}

// DeclineInvitation declines the caller's own pending invitation.
func (h *Clan) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	err := h.engine.DeclineInvitation(r.Context(), identity(r), req.TargetClan())
	respond(w, r, "decline_invitation", start, "", err)
}

// RequestMembership files the caller's request to join a clan.
func (h *Clan) RequestMembership(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	_, err := h.engine.RequestMembership(r.Context(), identity(r), req.TargetClan())
	respond(w, r, "request_membership", start, "", err)
}

// CancelMembershipRequest withdraws the caller's own pending request.
func (h *Clan) CancelMembershipRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	err := h.engine.CancelMembershipRequest(r.Context(), identity(r), req.TargetClan())
	respond(w, r, "cancel_membership_request", start, "", err)
}

// AcceptMembershipRequest approves a pending request and admits the
// requester.
func (h *Clan) AcceptMembershipRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	_, err := h.engine.AcceptMembershipRequest(r.Context(), identity(r), req.TargetClan(), model.JID(req.JID))
	respond(w, r, "accept_membership_request", start, "", err)
}

// DeclineMembershipRequest rejects a pending request.
func (h *Clan) DeclineMembershipRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	err := h.engine.DeclineMembershipRequest(r.Context(), identity(r), req.TargetClan(), model.JID(req.JID))
	respond(w, r, "decline_membership_request", start, "", err)
}
