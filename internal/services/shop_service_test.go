package services

import (
	"context"
	"testing"

	"infinite-experiment/clanledger/internal/engine"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopService_CatalogOrderAndValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	items, err := env.shop.Catalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = env.shop.AddItem(ctx, "Custom Role", 500)
	require.NoError(t, err)
	_, err = env.shop.AddItem(ctx, "Sticker", 50)
	require.NoError(t, err)

	_, err = env.shop.AddItem(ctx, "Free Lunch", 0)
	assert.ErrorIs(t, err, engine.ErrInvalidAmount)
	_, err = env.shop.AddItem(ctx, "  ", 10)
	assert.ErrorIs(t, err, engine.ErrInvalidInput)

	items, err = env.shop.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Sticker", items[0].Name)
}

func TestShopService_Purchase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.clans.CreateClan(ctx, "Wolves")
	require.NoError(t, err)
	_, err = env.ledger.AdminAdjust(ctx, engine.AdjustRequest{UserID: 1, ClanName: "Wolves", Amount: 120})
	require.NoError(t, err)
	_, err = env.shop.AddItem(ctx, "Sticker", 50)
	require.NoError(t, err)

	res, err := env.shop.Purchase(ctx, 1, "Sticker")
	require.NoError(t, err)
	assert.Equal(t, int64(70), res.RemainingPoints)

	_, err = env.shop.Purchase(ctx, 1, "Sticker")
	require.NoError(t, err)

	_, err = env.shop.Purchase(ctx, 1, "Sticker")
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidAmount)

	_, err = env.shop.Purchase(ctx, 1, "Yacht")
	assert.ErrorIs(t, err, engine.ErrNotFound)

	_, err = env.shop.Purchase(ctx, 404, "Sticker")
	assert.ErrorIs(t, err, engine.ErrNotFound)

	var user gormModels.User
	require.NoError(t, env.db.Where("user_id = ?", 1).First(&user).Error)
	assert.Equal(t, int64(20), user.Points)

	var sum int64
	require.NoError(t, env.db.Model(&gormModels.PointLog{}).Where("user_id = ?", 1).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error)
	assert.Equal(t, user.Points, sum)

	// purchases spend member points only
	var clan gormModels.Clan
	require.NoError(t, env.db.Where("name = ?", "Wolves").First(&clan).Error)
	assert.Equal(t, int64(120), clan.Points)
}
