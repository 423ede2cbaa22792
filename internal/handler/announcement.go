package handler

import (
	"net/http"
	"time"

	"github.com/revival/clans/internal/middleware"
	"github.com/revival/clans/internal/model"
	"github.com/revival/clans/internal/protocol"
	"github.com/revival/clans/internal/service"
)

// RetrieveAnnouncements pages through the clan's live announcements, newest
// first. start acts as a sequence cursor: zero starts from the newest, a
// prior page's lowest id fetches everything older.
func (h *Clan) RetrieveAnnouncements(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())

	_, max := req.Page(0, maxPageSize)
	cursor := uint64(0)
	if req.Start > 0 {
		cursor = uint64(req.Start)
	}

	anns, err := h.engine.RetrieveAnnouncements(r.Context(), identity(r), req.TargetClan(), cursor, max)
	if err != nil {
		respond(w, r, "retrieve_announcements", start, "", err)
		return
	}

	items := make([]string, 0, len(anns))
	for _, a := range anns {
		items = append(items, protocol.AnnouncementInfo(*a))
	}
	respond(w, r, "retrieve_announcements", start, protocol.List(items, len(items)), nil)
}

// PostAnnouncement appends an announcement to the clan's log.
func (h *Clan) PostAnnouncement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())

	p := service.PostAnnouncementParams{
		Subject: req.Subject,
		Body:    req.Msg,
	}
	if req.ExpireDate > 0 {
		p.TTL = time.Duration(req.ExpireDate) * time.Second
	}

	a, err := h.engine.PostAnnouncement(r.Context(), identity(r), req.TargetClan(), p)
	if err != nil {
		respond(w, r, "post_announcement", start, "", err)
		return
	}
	respond(w, r, "post_announcement", start, protocol.AnnouncementInfo(*a), nil)
}

// DeleteAnnouncement tombstones one announcement. The announcement sequence
// travels in the jid-free <id> element, so the clan id must arrive as
// <clan_id>.
func (h *Clan) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := middleware.ClanRequest(r.Context())
	err := h.engine.DeleteAnnouncement(r.Context(), identity(r),
		model.ClanID(req.RawClan), uint64(req.ID))
	respond(w, r, "delete_announcement", start, "", err)
}
