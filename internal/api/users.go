package api

import (
	"net/http"
	"time"

	"infinite-experiment/clanledger/internal/common"
)

// GetUserPoints handles GET /api/v1/users/{userID}/points
func (h *Handlers) GetUserPoints() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := pathInt64(w, r, initTime, "userID")
		if !ok {
			return
		}

		res, err := h.deps.Services.Stats.UserPoints(r.Context(), userID)
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Points fetched", res)
	}
}

// GetUserStats handles GET /api/v1/users/{userID}/stats
func (h *Handlers) GetUserStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := pathInt64(w, r, initTime, "userID")
		if !ok {
			return
		}

		res, err := h.deps.Services.Stats.UserStats(r.Context(), userID)
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Stats fetched", res)
	}
}

// GetUserClan handles GET /api/v1/users/{userID}/clan
func (h *Handlers) GetUserClan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := pathInt64(w, r, initTime, "userID")
		if !ok {
			return
		}

		clan, err := h.deps.Services.Stats.UserClan(r.Context(), userID)
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Clan fetched", map[string]any{
			"user_id":   userID,
			"clan_name": clan,
		})
	}
}

// GetUserLog handles GET /api/v1/users/{userID}/log
func (h *Handlers) GetUserLog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := pathInt64(w, r, initTime, "userID")
		if !ok {
			return
		}

		entries, err := h.deps.Services.Stats.PointLog(r.Context(), userID, queryLimit(r))
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Point log fetched", entries)
	}
}

// GetUserAchievements handles GET /api/v1/users/{userID}/achievements
func (h *Handlers) GetUserAchievements() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		userID, ok := pathInt64(w, r, initTime, "userID")
		if !ok {
			return
		}

		entries, err := h.deps.Services.Stats.Achievements(r.Context(), userID)
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Achievements fetched", entries)
	}
}
