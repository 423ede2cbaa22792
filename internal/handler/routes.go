package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/metrics"
	"github.com/revival/clans/internal/middleware"
	"github.com/revival/clans/internal/service"
	"github.com/revival/clans/pkg/jwt"
)

// RouterConfig carries everything the router wires together.
type RouterConfig struct {
	Engine   *service.Engine
	Store    database.Store
	Verifier middleware.TicketVerifier

	// Tokens may be nil, which disables the admin surface.
	Tokens *jwt.Service

	AdminRateRPS   float64
	AdminRateBurst int
}

// NewRouter builds the full route tree. The game client speaks POST-only
// XML under the two clan_manager prefixes; view endpoints are read paths,
// update endpoints mutate.
func NewRouter(cfg RouterConfig) http.Handler {
	clan := NewClan(cfg.Engine)
	admin := NewAdmin(cfg.Engine)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Logger, middleware.Recovery)

	r.Get("/health", healthHandler(cfg.Store))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// The info lookup is the one endpoint that works without a ticket.
	r.Post("/clan_manager_view/func/get_clan_info", clan.GetClanInfo)

	r.Route("/clan_manager_view/sec", func(r chi.Router) {
		r.Use(middleware.Ticket(cfg.Verifier))
		// The client posts clan creation under the view prefix.
		r.Post("/create_clan", clan.CreateClan)
		r.Post("/get_clan_list", clan.GetClanList)
		r.Post("/clan_search", clan.ClanSearch)
		r.Post("/get_member_list", clan.GetMemberList)
		r.Post("/get_member_info", clan.GetMemberInfo)
		r.Post("/get_blacklist", clan.GetBlacklist)
		r.Post("/retrieve_announcements", clan.RetrieveAnnouncements)
	})

	r.Route("/clan_manager_update/sec", func(r chi.Router) {
		r.Use(middleware.Ticket(cfg.Verifier))
		r.Post("/update_clan_info", clan.UpdateClanInfo)
		r.Post("/disband_clan", clan.DisbandClan)
		r.Post("/join_clan", clan.JoinClan)
		r.Post("/leave_clan", clan.LeaveClan)

		r.Post("/send_invitation", clan.SendInvitation)
		r.Post("/cancel_invitation", clan.CancelInvitation)
		r.Post("/accept_invitation", clan.AcceptInvitation)
		r.Post("/decline_invitation", clan.DeclineInvitation)

		r.Post("/request_membership", clan.RequestMembership)
		r.Post("/cancel_membership_request", clan.CancelMembershipRequest)
		r.Post("/accept_membership_request", clan.AcceptMembershipRequest)
		r.Post("/decline_membership_request", clan.DeclineMembershipRequest)

		r.Post("/change_member_role", clan.ChangeMemberRole)
		r.Post("/update_member_info", clan.UpdateMemberInfo)
		r.Post("/kick_member", clan.KickMember)

		r.Post("/record_blacklist_entry", clan.RecordBlacklistEntry)
		r.Post("/delete_blacklist_entry", clan.DeleteBlacklistEntry)

		r.Post("/post_announcement", clan.PostAnnouncement)
		r.Post("/delete_announcement", clan.DeleteAnnouncement)
	})

	if cfg.Tokens != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RateLimit(rate.Limit(cfg.AdminRateRPS), cfg.AdminRateBurst))
			r.Use(middleware.Admin(cfg.Tokens))
			r.Put("/clan/create", admin.CreateClan)
		})
	}

	return r
}

func healthHandler(store database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
