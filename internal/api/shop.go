package api

import (
	"net/http"
	"time"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/models/dtos"
)

// AddShopItem handles POST /api/v1/shop/items
func (h *Handlers) AddShopItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ShopItemReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}
		item, err := h.deps.Services.Shop.AddItem(r.Context(), req.Name, req.Cost)
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Shop item saved", item, http.StatusCreated)
	}
}

// ListShop handles GET /api/v1/shop
func (h *Handlers) ListShop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		items, err := h.deps.Services.Shop.Catalog(r.Context())
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Shop fetched", items)
	}
}

// Purchase handles POST /api/v1/shop/purchase. Non-admins may only spend their own points.
func (h *Handlers) Purchase() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := requireClaims(w, r, initTime)
		if claims == nil {
			return
		}

		var req dtos.PurchaseReq
		if !h.decodeAndValidate(w, r, initTime, &req) {
			return
		}
		if !claims.IsAdmin() && claims.DiscordUserID() != req.UserID {
			forbidden(w, initTime)
			return
		}

		res, err := h.deps.Services.Shop.Purchase(r.Context(), req.UserID, req.ItemName)
		if err != nil {
			handleLedgerError(w, r, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Purchase complete", res)
	}
}
