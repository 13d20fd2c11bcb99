package services

import (
	"context"
	"testing"

	"infinite-experiment/clanledger/internal/engine"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStandings(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	for _, name := range []string{"Wolves", "Ravens"} {
		_, err := env.clans.CreateClan(ctx, name)
		require.NoError(t, err)
	}
	adjust := []engine.AdjustRequest{
		{UserID: 1, ClanName: "Wolves", Amount: 300},
		{UserID: 2, ClanName: "Wolves", Amount: 120},
		{UserID: 3, ClanName: "Ravens", Amount: 700},
	}
	for _, req := range adjust {
		_, err := env.ledger.AdminAdjust(ctx, req)
		require.NoError(t, err)
	}
}

func TestStatsService_UserStats(t *testing.T) {
	env := newTestEnv(t)
	seedStandings(t, env)
	ctx := context.Background()

	stats, err := env.stats.UserStats(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(120), stats.Points)
	assert.Equal(t, int64(2), stats.RankInClan)
	assert.Equal(t, 1, stats.Achievements)
	assert.Equal(t, 0, stats.DaysAsMember)

	_, err = env.stats.UserStats(ctx, 404)
	assert.ErrorIs(t, err, engine.ErrNotFound)

	points, err := env.stats.UserPoints(ctx, 404)
	require.NoError(t, err)
	assert.Equal(t, int64(0), points.Points)
	assert.Nil(t, points.ClanName)
}

func TestStatsService_Leaderboards(t *testing.T) {
	env := newTestEnv(t)
	seedStandings(t, env)
	ctx := context.Background()

	clans, err := env.stats.ClanLeaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, clans, 2)
	assert.Equal(t, "Ravens", clans[0].Name)
	assert.Equal(t, int64(700), clans[0].Points)
	assert.Equal(t, "Wolves", clans[1].Name)
	assert.Equal(t, int64(420), clans[1].Points)

	users, err := env.stats.UserLeaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(3), users[0].UserID)
	assert.Equal(t, int64(1), users[1].UserID)
}

func TestStatsService_WeeklyComparisonRollsOverStaleClans(t *testing.T) {
	env := newTestEnv(t)
	seedStandings(t, env)
	ctx := context.Background()

	lastWeek := engine.WeekStart(testNow).AddDate(0, 0, -7)
	require.NoError(t, env.db.Model(&gormModels.Clan{}).Where("name = ?", "Ravens").
		Update("last_week_start", lastWeek).Error)

	rows, err := env.stats.WeeklyComparison(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Wolves still hold this week's points; Ravens were archived
	assert.Equal(t, "Wolves", rows[0].Name)
	assert.Equal(t, int64(420), rows[0].Delta)
	assert.Equal(t, "Ravens", rows[1].Name)
	assert.Equal(t, int64(0), rows[1].Points)
	assert.Equal(t, int64(700), rows[1].LastWeekPoints)
	assert.Equal(t, int64(-700), rows[1].Delta)
}

func TestStatsService_LogAndAchievements(t *testing.T) {
	env := newTestEnv(t)
	seedStandings(t, env)
	ctx := context.Background()

	_, err := env.ledger.AdminAdjust(ctx, engine.AdjustRequest{UserID: 3, Amount: -200})
	require.NoError(t, err)

	entries, err := env.stats.PointLog(ctx, 3, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(-200), entries[0].Amount)
	assert.Equal(t, "admin_removal", entries[0].Source)

	achievements, err := env.stats.Achievements(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, achievements, 2)

	none, err := env.stats.Achievements(ctx, 404)
	require.NoError(t, err)
	assert.Empty(t, none)
}
