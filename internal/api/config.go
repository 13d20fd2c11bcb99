package api

import (
	"net/http"
	"net/url"
	"time"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

// SetBonusRole handles PUT /api/v1/config/bonus-role
func (h *Handlers) SetBonusRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.SetBonusRoleReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}
		if err := h.deps.Services.Config.SetBonusRole(r.Context(), req.RoleName); err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Bonus role updated", map[string]string{"role_name": req.RoleName})
	}
}

// AddWhitelistRole handles POST /api/v1/config/whitelist
func (h *Handlers) AddWhitelistRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.WhitelistRoleReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}
		if err := h.deps.Services.Config.AddWhitelistRole(r.Context(), req.RoleName); err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Role whitelisted", map[string]string{"role_name": req.RoleName}, http.StatusCreated)
	}
}

// RemoveWhitelistRole handles DELETE /api/v1/config/whitelist/{role}
func (h *Handlers) RemoveWhitelistRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		role := chi.URLParam(r, "role")
		if unescaped, err := url.PathUnescape(role); err == nil {
			role = unescaped
		}
		if err := h.deps.Services.Config.RemoveWhitelistRole(r.Context(), role); err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Role removed from whitelist", map[string]string{"role_name": role})
	}
}

// ListWhitelist handles GET /api/v1/config/whitelist
func (h *Handlers) ListWhitelist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		roles, err := h.deps.Services.Config.WhitelistRoles(r.Context())
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Whitelisted roles fetched", roles)
	}
}

// SetChannelMultiplier handles PUT /api/v1/config/channels/{channelID}
func (h *Handlers) SetChannelMultiplier() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		channelID, ok := pathInt64(w, r, initTime, "channelID")
		if !ok {
			return
		}
		var req dtos.ChannelMultiplierReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}
		if err := h.deps.Services.Config.SetChannelMultiplier(r.Context(), channelID, req.Multiplier, req.ChannelName); err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Channel multiplier set", map[string]any{
			"channel_id": channelID,
			"multiplier": req.Multiplier,
		})
	}
}

// CreateSeasonalEvent handles POST /api/v1/events
func (h *Handlers) CreateSeasonalEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.SeasonalEventReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}
		err := h.deps.Services.Config.CreateSeasonalEvent(r.Context(), req.Name, req.StartDate, req.EndDate, req.Multiplier)
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Seasonal event created", req, http.StatusCreated)
	}
}
