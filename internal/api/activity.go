package api

import (
	"errors"
	"net/http"
	"time"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/logging"
	"infinite-experiment/clanledger/internal/models/dtos"
)

// ProcessMessage handles POST /api/v1/activity/message. Messages too short to
// count are acknowledged with applied=0 rather than an error.
func (h *Handlers) ProcessMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := requireClaims(w, r, initTime)
		if claims == nil {
			return
		}

		var req dtos.MessageActivityReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}

		roles := req.RoleNames
		if len(roles) == 0 && req.UserID == claims.DiscordUserID() {
			roles = claims.RoleNames()
		}

		length, visible := engine.MessageLengths(req.Content)
		res, err := h.deps.Ledger.ProcessActivity(r.Context(), engine.ActivityEvent{
			UserID:        req.UserID,
			MessageLength: length,
			VisibleLength: visible,
			Timestamp:     h.deps.Ledger.Now(),
			ChannelID:     req.ChannelID,
			HasBonusRole:  req.HasBonusRole,
			RoleNames:     roles,
		})
		if errors.Is(err, engine.ErrMessageIgnored) {
			common.RespondSuccess(w, initTime, "Message not eligible for points", dtos.AwardResponse{
				UserID:          req.UserID,
				NewAchievements: []string{},
			})
			return
		}
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Points awarded", toAwardResponse(res))
	}
}

// EnqueueMessage handles POST /api/v1/activity/queue. The message is scored
// later by the queue workers using the time it was received here.
func (h *Handlers) EnqueueMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		if h.deps.Queue == nil {
			common.RespondError(w, initTime, nil, "Activity queue is not configured", http.StatusServiceUnavailable)
			return
		}

		var req dtos.MessageActivityReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}

		id, err := h.deps.Queue.Enqueue(r.Context(), &common.ActivityQueueItem{
			UserID:       req.UserID,
			Content:      req.Content,
			ChannelID:    req.ChannelID,
			HasBonusRole: req.HasBonusRole,
			RoleNames:    req.RoleNames,
			ReceivedAt:   h.deps.Ledger.Now().UTC(),
		})
		if err != nil {
			logging.Error("Failed to enqueue activity", "user_id", req.UserID, "error", err)
			common.RespondError(w, initTime, nil, "Failed to queue message", http.StatusServiceUnavailable)
			return
		}

		common.RespondSuccess(w, initTime, "Message queued", map[string]string{"message_id": id}, http.StatusAccepted)
	}
}
