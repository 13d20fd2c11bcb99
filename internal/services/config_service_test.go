package services

import (
	"context"
	"testing"

	"infinite-experiment/clanledger/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestConfigService_BonusRoleInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role, err := env.config.BonusRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", role)

	require.NoError(t, env.config.SetBonusRole(ctx, "Booster"))
	role, err = env.config.BonusRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Booster", role)

	assert.ErrorIs(t, env.config.SetBonusRole(ctx, "  "), engine.ErrInvalidInput)
}

func TestConfigService_Whitelist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.config.AddWhitelistRole(ctx, "Captains"))
	require.NoError(t, env.config.AddWhitelistRole(ctx, "Officers"))
	assert.ErrorIs(t, env.config.AddWhitelistRole(ctx, "Captains"), engine.ErrDuplicate)

	roles, err := env.config.WhitelistRoles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Captains", "Officers"}, roles)

	ok, err := env.config.IsWhitelisted(ctx, []string{"Member", "Officers"})
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, env.config.RemoveWhitelistRole(ctx, "Officers"))
	assert.ErrorIs(t, env.config.RemoveWhitelistRole(ctx, "Officers"), engine.ErrNotFound)

	ok, err = env.config.IsWhitelisted(ctx, []string{"Officers"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfigService_ChannelMultiplier(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.config.SetChannelMultiplier(ctx, 42, 2.5, "events"))
	assert.ErrorIs(t, env.config.SetChannelMultiplier(ctx, 42, 5.1, "events"), engine.ErrInvalidAmount)
	assert.ErrorIs(t, env.config.SetChannelMultiplier(ctx, 42, 0.05, "events"), engine.ErrInvalidAmount)

	m, ok, err := env.config.ChannelMultiplier(ctx, 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2.5, m)

	_, ok, err = env.config.ChannelMultiplier(ctx, 43)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfigService_SeasonalEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.config.CreateSeasonalEvent(ctx, "Harvest", "2026-10-01", "2026-10-14", 2))
	require.NoError(t, env.config.CreateSeasonalEvent(ctx, "Spooky", "2026-10-14", "2026-10-31", 1.5))
	require.NoError(t, env.config.CreateSeasonalEvent(ctx, "Winter", "2026-12-01", "2026-12-31", 3))

	assert.ErrorIs(t, env.config.CreateSeasonalEvent(ctx, "Backwards", "2026-10-10", "2026-10-01", 2), engine.ErrInvalidInput)
	assert.ErrorIs(t, env.config.CreateSeasonalEvent(ctx, "BadDate", "10/01/2026", "2026-10-31", 2), engine.ErrInvalidInput)
	assert.ErrorIs(t, env.config.CreateSeasonalEvent(ctx, "TooBig", "2026-10-01", "2026-10-31", 3.5), engine.ErrInvalidAmount)

	multipliers, err := env.config.SeasonalMultipliers(ctx, testNow)
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{2, 1.5}, multipliers)

	multipliers, err = env.config.SeasonalMultipliers(ctx, testNow.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.Empty(t, multipliers)
}

func TestConfigService_SeasonalMultiplierAppliesToAwards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.clans.CreateClan(ctx, "Wolves")
	require.NoError(t, err)
	require.NoError(t, env.config.CreateSeasonalEvent(ctx, "Harvest", "2026-10-01", "2026-10-31", 2))
	require.NoError(t, env.config.SetChannelMultiplier(ctx, 9, 1.5, "general"))

	channel := int64(9)
	res, err := env.ledger.Award(ctx, engine.AwardRequest{
		UserID:     1,
		ClanName:   "Wolves",
		BaseAmount: 5,
		Source:     "message",
		ChannelID:  &channel,
	})
	require.NoError(t, err)
	// 5 x 1.5 x 2 = 15
	assert.Equal(t, int64(15), res.Amount)
}

func TestConfigService_WriteDuringLoadIsNotCachedStale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// The first query of the next load is followed by an admin write, so the
	// load finishes with the old bonus role in hand.
	armed := true
	require.NoError(t, env.db.Callback().Query().After("gorm:query").Register("test:concurrent_write", func(tx *gorm.DB) {
		if !armed {
			return
		}
		armed = false
		require.NoError(t, env.config.SetBonusRole(ctx, "Booster"))
	}))

	role, err := env.config.BonusRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", role, "the overlapping load saw the store before the write")

	role, err = env.config.BonusRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Booster", role)
}
