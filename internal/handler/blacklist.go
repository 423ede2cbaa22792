package handler

import (
	"net/http"
	"time"

	"github.com/revival/clans/internal/middleware"
	"github.com/revival/clans/internal/model"
	"github.com/revival/clans/internal/protocol"
)

// GetBlacklist lists the clan's ban entries.
func (h *Clan) GetBlacklist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())

	entries, err := h.engine.GetBlacklist(r.Context(), identity(r), req.TargetClan())
	if err != nil {
		respond(w, r, "get_blacklist", start, "", err)
		return
	}

	from, max := req.Page(defaultPageSize, maxPageSize)
	lo, hi := page(from, max, len(entries))
	items := make([]string, 0, hi-lo)
	for _, e := range entries[lo:hi] {
		items = append(items, protocol.BlacklistEntry(*e))
	}
	respond(w, r, "get_blacklist", start, protocol.List(items, len(entries)), nil)
}

// RecordBlacklistEntry bans a player from the clan.
func (h *Clan) RecordBlacklistEntry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	_, err := h.engine.RecordBlacklistEntry(r.Context(), identity(r), req.TargetClan(),
		model.JID(req.JID), req.Reason)
	respond(w, r, "record_blacklist_entry", start, "", err)
}

// DeleteBlacklistEntry lifts a ban.
func (h *Clan) DeleteBlacklistEntry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	err := h.engine.DeleteBlacklistEntry(r.Context(), identity(r), req.TargetClan(), model.JID(req.JID))
	respond(w, r, "delete_blacklist_entry", start, "", err)
}
