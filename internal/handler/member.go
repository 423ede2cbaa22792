package handler

import (
	"net/http"
	"time"

	"github.com/revival/clans/internal/middleware"
	"github.com/revival/clans/internal/model"
	"github.com/revival/clans/internal/protocol"
	"github.com/revival/clans/internal/service"
)

// GetMemberList returns the roster page: members in join order, then
// pending invitees and requesters.
func (h *Clan) GetMemberList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())

	entries, err := h.engine.GetMemberList(r.Context(), identity(r), req.TargetClan())
	if err != nil {
		respond(w, r, "get_member_list", start, "", err)
		return
	}

	from, max := req.Page(defaultPageSize, maxPageSize)
	lo, hi := page(from, max, len(entries))
	items := make([]string, 0, hi-lo)
	for _, e := range entries[lo:hi] {
		items = append(items, protocol.PlayerBasicInfo(*e))
	}
	respond(w, r, "get_member_list", start, protocol.List(items, len(entries)), nil)
}

// GetMemberInfo returns one member's full record.
func (h *Clan) GetMemberInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())

	target := model.JID(req.JID)
	if target == "" {
		target = identity(r).JID
	}
	m, err := h.engine.GetMemberInfo(r.Context(), identity(r), req.TargetClan(), target)
	if err != nil {
		respond(w, r, "get_member_info", start, "", err)
		return
	}
	respond(w, r, "get_member_info", start, protocol.PlayerInfo(*m, nil), nil)
}

// UpdateMemberInfo updates the caller's own member profile.
func (h *Clan) UpdateMemberInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())

	p := service.UpdateMemberInfoParams{
		OnlineName:  req.OnlineName,
		Description: req.Description,
	}
	if req.AllowMsg != nil {
		allow := *req.AllowMsg != 0
		p.AllowMsg = &allow
	}

	_, err := h.engine.UpdateMemberInfo(r.Context(), identity(r), req.TargetClan(), p)
	respond(w, r, "update_member_info", start, "", err)
}

// ChangeMemberRole assigns a new role to the target member.
func (h *Clan) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())

	if req.Role == nil {
		respond(w, r, "change_member_role", start, "", service.ErrInvalidRolePriority)
		return
	}
	err := h.engine.ChangeMemberRole(r.Context(), identity(r), req.TargetClan(),
		model.JID(req.JID), model.Role(*req.Role))
	respond(w, r, "change_member_role", start, "", err)
}

// KickMember removes the target from the clan.
func (h *Clan) KickMember(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	err := h.engine.KickMember(r.Context(), identity(r), req.TargetClan(), model.JID(req.JID))
	respond(w, r, "kick_member", start, "", err)
}
