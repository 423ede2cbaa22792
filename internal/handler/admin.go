package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/revival/clans/internal/metrics"
	"github.com/revival/clans/internal/service"
)

// Admin handles the JSON admin surface.
type Admin struct {
	engine *service.Engine
}

// NewAdmin creates the admin handler.
func NewAdmin(engine *service.Engine) *Admin {
	return &Admin{engine: engine}
}

type adminCreateClanRequest struct {
	Username     string `json:"username"`
	ClanName     string `json:"clanName"`
	ClanTag      string `json:"clanTag"`
	ClanPlatform string `json:"clanPlatform"`
}

type adminCreateClanResponse struct {
	ClanID uint32 `json:"clanId"`
}

// CreateClan creates a clan on behalf of a player named by plain username.
func (h *Admin) CreateClan(w http.ResponseWriter, r *http.Request) {
	var req adminCreateClanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.ClanName == "" {
		writeJSONError(w, http.StatusBadRequest, "username and clanName are required")
		return
	}

	clan, err := h.engine.AdminCreateClan(r.Context(), req.Username, service.CreateClanParams{
		Name:     req.ClanName,
		Tag:      req.ClanTag,
		Platform: req.ClanPlatform,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrClanNameTaken), errors.Is(err, service.ErrClanTagTaken):
			status = http.StatusConflict
		case errors.Is(err, service.ErrAlreadyInClan), errors.Is(err, service.ErrOwnershipLimitReached):
			status = http.StatusConflict
		case errors.Is(err, service.ErrInvalidName), errors.Is(err, service.ErrInvalidTag):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrClanLimitReached), errors.Is(err, service.ErrCreateRateLimited):
			status = http.StatusForbidden
		}
		writeJSONError(w, status, err.Error())
		return
	}

	slog.Info("admin created clan",
		slog.String("username", req.Username),
		slog.String("name", clan.Name),
		slog.Uint64("clan_id", uint64(clan.ID)),
	)
	metrics.ClansCreated.WithLabelValues("admin").Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(adminCreateClanResponse{ClanID: uint32(clan.ID)})
}

func writeJSONError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": detail})
}
