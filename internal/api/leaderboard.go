package api

import (
	"net/http"
	"time"

	"infinite-experiment/clanledger/internal/common"
)

// ClanLeaderboard handles GET /api/v1/leaderboard/clans
func (h *Handlers) ClanLeaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		rows, err := h.deps.Services.Stats.ClanLeaderboard(r.Context(), queryLimit(r))
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Clan leaderboard fetched", rows)
	}
}

// UserLeaderboard handles GET /api/v1/leaderboard/users
func (h *Handlers) UserLeaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		rows, err := h.deps.Services.Stats.UserLeaderboard(r.Context(), queryLimit(r))
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "User leaderboard fetched", rows)
	}
}

// WeeklyComparison handles GET /api/v1/leaderboard/weekly
func (h *Handlers) WeeklyComparison() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		rows, err := h.deps.Services.Stats.WeeklyComparison(r.Context())
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Weekly comparison fetched", rows)
	}
}
