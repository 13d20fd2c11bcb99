package api

import (
	"net/http"
	"time"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/models/dtos"
)

// SetChallenge handles PUT /api/v1/challenges/today
func (h *Handlers) SetChallenge() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.SetChallengeReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}
		res, err := h.deps.Services.Challenges.SetToday(r.Context(), req.Challenge, req.RewardPoints)
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Challenge set", res)
	}
}

// GetChallenge handles GET /api/v1/challenges/today
func (h *Handlers) GetChallenge() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		res, err := h.deps.Services.Challenges.Today(r.Context())
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}
		if res == nil {
			common.RespondSuccess(w, initTime, "No challenge set for today", nil)
			return
		}

		common.RespondSuccess(w, initTime, "Challenge fetched", res)
	}
}

// ClaimChallenge handles POST /api/v1/challenges/today/claim
func (h *Handlers) ClaimChallenge() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ClaimChallengeReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}
		res, err := h.deps.Services.Challenges.Claim(r.Context(), req.UserID)
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Challenge reward granted", toAwardResponse(res))
	}
}
