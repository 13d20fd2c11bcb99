package api

import (
	"net/http"
	"net/url"
	"time"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

func clanParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

// CreateClan handles POST /api/v1/clans
func (h *Handlers) CreateClan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CreateClanReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}

		clan, err := h.deps.Services.Clans.CreateClan(r.Context(), req.Name)
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Clan created", dtos.ClanInfoResponse{
			Name:      clan.Name,
			MaxPoints: clan.MaxPoints,
		}, http.StatusCreated)
	}
}

// SyncClans handles POST /api/v1/clans/sync
func (h *Handlers) SyncClans() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.SyncClansReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}

		res, err := h.deps.Services.Clans.SyncFromRoles(r.Context(), req.Roles)
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Clans synced", res)
	}
}

// SetClanCap handles PUT /api/v1/clans/{name}/cap
func (h *Handlers) SetClanCap() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.SetClanCapReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}

		name := clanParam(r)
		if err := h.deps.Services.Clans.SetWeeklyCap(r.Context(), name, req.MaxPoints); err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Weekly cap updated", map[string]any{
			"name":       name,
			"max_points": req.MaxPoints,
		})
	}
}

// AssignMember handles POST /api/v1/clans/{name}/members
func (h *Handlers) AssignMember() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.AssignMemberReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}

		name := clanParam(r)
		if err := h.deps.Services.Clans.AssignMember(r.Context(), name, req.UserID); err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Member assigned", map[string]any{
			"name":    name,
			"user_id": req.UserID,
		})
	}
}

// GetClan handles GET /api/v1/clans/{name}
func (h *Handlers) GetClan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		info, err := h.deps.Services.Clans.GetClanInfo(r.Context(), clanParam(r))
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Clan fetched", info)
	}
}

// TopClanMembers handles GET /api/v1/clans/{name}/top
func (h *Handlers) TopClanMembers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		rows, err := h.deps.Services.Clans.TopMembers(r.Context(), clanParam(r), queryLimit(r))
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Top members fetched", rows)
	}
}

// ClanMembers handles GET /api/v1/clans/{name}/members
func (h *Handlers) ClanMembers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		rows, err := h.deps.Services.Clans.Members(r.Context(), clanParam(r))
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Members fetched", rows)
	}
}
