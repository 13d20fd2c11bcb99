package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"infinite-experiment/clanledger/internal/api"
	"infinite-experiment/clanledger/internal/auth"
	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/config"
	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/db"
	"infinite-experiment/clanledger/internal/metrics"
	"infinite-experiment/clanledger/internal/models/dtos"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var routerNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

const (
	adminKey  = "admin-key"
	memberKey = "member-key"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	sqlxDB, err := db.NewSQLX(gdb)
	require.NoError(t, err)
	t.Cleanup(func() { sqlxDB.Close() })

	require.NoError(t, gdb.Create(&gormModels.APIKey{Key: adminKey, Status: true, Role: constants.RoleAdmin}).Error)
	require.NoError(t, gdb.Create(&gormModels.APIKey{Key: memberKey, Status: true, Role: constants.RoleMember}).Error)

	cfg := &config.Config{
		MessageCooldown: 5 * time.Second,
		DailyPointCap:   500,
		DefaultClanCap:  20000,
		JWTSecret:       "router-test",
	}
	deps, err := api.InitDependencies(cfg, gdb, sqlxDB,
		common.NewCacheService(60, 120),
		common.LogEventPublisher{},
		metrics.NewMetricsRegistry(prometheus.NewRegistry()),
		func() time.Time { return routerNow },
	)
	require.NoError(t, err)

	return RegisterRoutes(deps, RouterOptions{UpSince: routerNow})
}

type caller struct {
	t      *testing.T
	router http.Handler
	key    string
	userID string
	admin  bool
}

func (c caller) do(method, path string, body any) (*httptest.ResponseRecorder, dtos.APIResponse) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set(auth.HeaderAPIKey, c.key)
	}
	if c.userID != "" {
		req.Header.Set(auth.HeaderDiscordID, c.userID)
	}
	if c.admin {
		req.Header.Set(auth.HeaderDiscordAdmin, "true")
	}

	rr := httptest.NewRecorder()
	c.router.ServeHTTP(rr, req)

	var resp dtos.APIResponse
	if rr.Body.Len() > 0 {
		_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	}
	return rr, resp
}

func dataMap(t *testing.T, resp dtos.APIResponse) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "expected object data, got %T", resp.Data)
	return m
}

func TestRouter_AuthAndPermissions(t *testing.T) {
	router := newTestRouter(t)

	anon := caller{t: t, router: router}
	rr, _ := anon.do(http.MethodGet, "/api/v1/shop", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	member := caller{t: t, router: router, key: memberKey, userID: "100", admin: true}
	rr, resp := member.do(http.MethodPost, "/api/v1/clans", dtos.CreateClanReq{Name: "Wolves"})
	assert.Equal(t, http.StatusForbidden, rr.Code, "member keys cannot assert admin")
	assert.Equal(t, constants.ErrCodeForbidden, resp.Code)

	rr, _ = member.do(http.MethodPost, "/api/v1/clans/Wolves/members", dtos.AssignMemberReq{UserID: 100})
	assert.Equal(t, http.StatusForbidden, rr.Code, "assignment needs a whitelisted role")

	rr, _ = member.do(http.MethodGet, "/api/v1/shop", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_AwardFlow(t *testing.T) {
	router := newTestRouter(t)
	admin := caller{t: t, router: router, key: adminKey, userID: "1", admin: true}
	bot := caller{t: t, router: router, key: adminKey, userID: "100"}

	rr, _ := admin.do(http.MethodPost, "/api/v1/clans", dtos.CreateClanReq{Name: "Wolves"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, resp := admin.do(http.MethodPost, "/api/v1/clans", dtos.CreateClanReq{Name: "Wolves"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, constants.ErrCodeDuplicateClan, resp.Code)

	rr, _ = admin.do(http.MethodPost, "/api/v1/clans/Wolves/members", dtos.AssignMemberReq{UserID: 100})
	require.Equal(t, http.StatusOK, rr.Code)

	msg := dtos.MessageActivityReq{UserID: 100, Content: "hello there clan", RoleNames: []string{"Wolves"}}
	rr, resp = bot.do(http.MethodPost, "/api/v1/activity/message", msg)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	first := dataMap(t, resp)
	assert.Greater(t, first["applied"].(float64), 0.0)
	assert.Equal(t, "Wolves", first["clan_name"])

	rr, resp = bot.do(http.MethodPost, "/api/v1/activity/message", msg)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, constants.ErrCodeRateLimited, resp.Code)

	rr, resp = bot.do(http.MethodPost, "/api/v1/activity/message", dtos.MessageActivityReq{UserID: 100, Content: " hi "})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0.0, dataMap(t, resp)["applied"])

	rr, resp = bot.do(http.MethodGet, "/api/v1/users/100/points", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, first["applied"], dataMap(t, resp)["points"])

	rr, resp = admin.do(http.MethodPost, "/api/v1/points/remove", dtos.AdjustPointsReq{UserID: 100, Amount: 9999})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, constants.ErrCodeInvalidAmount, resp.Code)
	assert.Equal(t, 9999.0, dataMap(t, resp)["limit"])

	rr, resp = admin.do(http.MethodPost, "/api/v1/points/add", dtos.AdjustPointsReq{UserID: 100, Amount: 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, constants.ErrCodeInvalidAmount, resp.Code)

	rr, resp = admin.do(http.MethodPost, "/api/v1/points/add", dtos.AdjustPointsReq{UserID: 100, Amount: 50})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 50.0, dataMap(t, resp)["applied"])

	rr, resp = bot.do(http.MethodGet, "/api/v1/clans/Wolves", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1.0, dataMap(t, resp)["member_count"])

	rr, resp = bot.do(http.MethodGet, "/api/v1/clans/Nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, constants.ErrCodeClanNotFound, resp.Code)

	rr, _ = bot.do(http.MethodGet, "/api/v1/users/abc/points", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_ShopPurchaseOwnership(t *testing.T) {
	router := newTestRouter(t)
	admin := caller{t: t, router: router, key: adminKey, userID: "1", admin: true}
	member := caller{t: t, router: router, key: memberKey, userID: "100"}

	rr, _ := admin.do(http.MethodPost, "/api/v1/shop/items", dtos.ShopItemReq{Name: "Banner", Cost: 10})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, _ = member.do(http.MethodPost, "/api/v1/shop/purchase", dtos.PurchaseReq{UserID: 200, ItemName: "Banner"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, resp := member.do(http.MethodPost, "/api/v1/shop/purchase", dtos.PurchaseReq{UserID: 100, ItemName: "Banner"})
	assert.Equal(t, http.StatusNotFound, rr.Code, "a member with no points has no record")
	assert.Equal(t, constants.ErrCodeNotFound, resp.Code)
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"database"`)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}
