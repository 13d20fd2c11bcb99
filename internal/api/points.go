package api

import (
	"net/http"
	"time"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/models/dtos"
)

// AddPoints handles POST /api/v1/points/add
func (h *Handlers) AddPoints() http.HandlerFunc {
	return h.adjustPoints(1, "Points added")
}

// RemovePoints handles POST /api/v1/points/remove
func (h *Handlers) RemovePoints() http.HandlerFunc {
	return h.adjustPoints(-1, "Points removed")
}

func (h *Handlers) adjustPoints(sign int64, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.AdjustPointsReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}

		res, err := h.deps.Ledger.AdminAdjust(r.Context(), engine.AdjustRequest{
			UserID:    req.UserID,
			ClanName:  req.ClanName,
			Amount:    sign * req.Amount,
			ChannelID: req.ChannelID,
		})
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, message, toAwardResponse(res))
	}
}
