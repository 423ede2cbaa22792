package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/revival/clans/internal/metrics"
	"github.com/revival/clans/internal/middleware"
	"github.com/revival/clans/internal/protocol"
	"github.com/revival/clans/internal/service"
)

// GetClanInfo answers the public clan lookup. The only endpoint outside the
// ticket middleware, so it parses its own body.
func (h *Clan) GetClanInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		respond(w, r, "get_clan_info", start, "", service.ErrInvalidBody)
		return
	}
	req, err := protocol.Parse(body)
	if err != nil {
		respond(w, r, "get_clan_info", start, "", service.ErrInvalidBody)
		return
	}

	view, err := h.engine.GetClanInfo(r.Context(), req.TargetClan())
	if err != nil {
		respond(w, r, "get_clan_info", start, "", err)
		return
	}
	respond(w, r, "get_clan_info", start, protocol.ClanInfo(*view), nil)
}

// GetClanList reports every clan the caller belongs to, is invited to, or
// has requested to join.
func (h *Clan) GetClanList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())

	views, err := h.engine.GetClanList(r.Context(), identity(r))
	if err != nil {
		respond(w, r, "get_clan_list", start, "", err)
		return
	}

	from, max := req.Page(defaultPageSize, maxPageSize)
	lo, hi := page(from, max, len(views))
	items := make([]string, 0, hi-lo)
	for _, v := range views[lo:hi] {
		items = append(items, protocol.ClanPlayerInfo(*v))
	}
	respond(w, r, "get_clan_list", start, protocol.List(items, len(views)), nil)
}

// ClanSearch is not offered on this network; the client is told the service
// is closed so it degrades gracefully instead of retrying.
func (h *Clan) ClanSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	metrics.Operations.WithLabelValues("clan_search", protocol.CodeClosedService.String()).Inc()
	metrics.OperationDuration.WithLabelValues("clan_search").Observe(time.Since(start).Seconds())
	protocol.WriteResult(w, protocol.CodeClosedService)
}

// CreateClan creates a clan owned by the caller and answers its new id.
func (h *Clan) CreateClan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())

	clan, err := h.engine.CreateClan(r.Context(), identity(r), service.CreateClanParams{
		Name: req.Name,
		Tag:  req.Tag,
	})
	if err != nil {
		respond(w, r, "create_clan", start, "", err)
		return
	}
	metrics.ClansCreated.WithLabelValues("game").Inc()
	respond(w, r, "create_clan", start, protocol.ID(clan.ID), nil)
}

// UpdateClanInfo applies a partial clan update.
func (h *Clan) UpdateClanInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())

	p := service.UpdateClanInfoParams{Description: req.Description}
	if req.Name != "" {
		p.Name = &req.Name
	}
	if req.Tag != "" {
		p.Tag = &req.Tag
	}

	err := h.engine.UpdateClanInfo(r.Context(), identity(r), req.TargetClan(), p)
	respond(w, r, "update_clan_info", start, "", err)
}

// DisbandClan removes the caller's clan and everything under it.
func (h *Clan) DisbandClan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	err := h.engine.DisbandClan(r.Context(), identity(r), req.TargetClan())
	respond(w, r, "disband_clan", start, "", err)
}

// JoinClan admits the caller directly into an auto-accept clan.
func (h *Clan) JoinClan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	_, err := h.engine.JoinClan(r.Context(), identity(r), req.TargetClan())
	respond(w, r, "join_clan", start, "", err)
}

// LeaveClan removes the caller from the clan.
func (h *Clan) LeaveClan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	err := h.engine.LeaveClan(r.Context(), identity(r), req.TargetClan())
	respond(w, r, "leave_clan", start, "", err)
}
