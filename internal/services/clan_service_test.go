package services

import (
	"context"
	"testing"

	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/models/dtos"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestValidateClanName(t *testing.T) {
	valid := []string{"Iron-Wolves_2", "Night Owls", "a"}
	invalid := []string{"Iron/Wolves", "", "   ", "Wolves!", "ÄÖÜ", "this name is far too long to be accepted as a clan name"}

	for _, name := range valid {
		assert.NoError(t, ValidateClanName(name), name)
	}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidateClanName(name), engine.ErrInvalidClanName, name)
	}
}

func TestClanService_CreateClan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	clan, err := env.clans.CreateClan(ctx, "Iron-Wolves_2")
	require.NoError(t, err)
	assert.Equal(t, int64(20000), clan.MaxPoints)
	require.NotNil(t, clan.LastWeekStart)
	assert.True(t, clan.LastWeekStart.Equal(engine.WeekStart(testNow)))

	_, err = env.clans.CreateClan(ctx, "Iron-Wolves_2")
	assert.ErrorIs(t, err, engine.ErrDuplicateClan)

	_, err = env.clans.CreateClan(ctx, "Iron/Wolves")
	assert.ErrorIs(t, err, engine.ErrInvalidClanName)
}

func TestClanService_AssignAndCap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.clans.CreateClan(ctx, "Wolves")
	require.NoError(t, err)

	require.NoError(t, env.clans.AssignMember(ctx, "Wolves", 11))
	assert.ErrorIs(t, env.clans.AssignMember(ctx, "Ravens", 11), engine.ErrClanNotFound)

	clanName, err := env.stats.UserClan(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, "Wolves", clanName)

	require.NoError(t, env.clans.SetWeeklyCap(ctx, "Wolves", 100))
	assert.ErrorIs(t, env.clans.SetWeeklyCap(ctx, "Wolves", 99), engine.ErrInvalidAmount)
	assert.ErrorIs(t, env.clans.SetWeeklyCap(ctx, "Wolves", 20001), engine.ErrInvalidAmount)
	assert.ErrorIs(t, env.clans.SetWeeklyCap(ctx, "Ravens", 500), engine.ErrClanNotFound)

	info, err := env.clans.GetClanInfo(ctx, "Wolves")
	require.NoError(t, err)
	assert.Equal(t, int64(100), info.MaxPoints)
	assert.Equal(t, int64(1), info.MemberCount)
}

func TestClanService_SyncFromRoles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.clans.CreateClan(ctx, "Wolves")
	require.NoError(t, err)

	res, err := env.clans.SyncFromRoles(ctx, []dtos.PlatformRole{
		{Name: "@everyone", MemberIDs: []int64{1, 2, 3}},
		{Name: "Server Booster", Managed: true, MemberIDs: []int64{1}},
		{Name: "Moderators", MemberIDs: []int64{2}},
		{Name: "Empty", MemberIDs: nil},
		{Name: "Bad/Name", MemberIDs: []int64{3}},
		{Name: "Wolves", MemberIDs: []int64{1, 2}},
		{Name: "Ravens", MemberIDs: []int64{3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ClansCreated)
	assert.Equal(t, 3, res.UsersSynced)

	var count int64
	require.NoError(t, env.db.Model(&gormModels.Clan{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	members, err := env.clans.Members(ctx, "Wolves")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestClanService_InfoAndTopMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.clans.CreateClan(ctx, "Wolves")
	require.NoError(t, err)
	require.NoError(t, env.clans.SetWeeklyCap(ctx, "Wolves", 1000))

	for userID, amount := range map[int64]int64{1: 100, 2: 250, 3: 50} {
		_, err := env.ledger.AdminAdjust(ctx, engine.AdjustRequest{UserID: userID, ClanName: "Wolves", Amount: amount})
		require.NoError(t, err)
	}

	info, err := env.clans.GetClanInfo(ctx, "Wolves")
	require.NoError(t, err)
	assert.Equal(t, int64(400), info.Points)
	assert.Equal(t, int64(3), info.MemberCount)
	assert.InDelta(t, 40.0, info.ProgressPercent, 0.001)

	top, err := env.clans.TopMembers(ctx, "Wolves", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].UserID)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, int64(1), top[1].UserID)

	_, err = env.clans.GetClanInfo(ctx, "Nobody")
	assert.ErrorIs(t, err, engine.ErrClanNotFound)
}

func TestClanService_CreateClanRace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Another writer inserts the same clan between the existence check and the insert.
	armed := true
	require.NoError(t, env.db.Callback().Create().Before("gorm:create").Register("test:concurrent_create", func(tx *gorm.DB) {
		if !armed {
			return
		}
		armed = false
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO clans (name, points, last_week_points, max_points) VALUES (?, 0, 0, 20000)", "Wolves").Error)
	}))

	_, err := env.clans.CreateClan(ctx, "Wolves")
	require.ErrorIs(t, err, engine.ErrDuplicateClan)
	var le *engine.LedgerError
	require.ErrorAs(t, err, &le)
	assert.False(t, le.Retryable())

	var count int64
	require.NoError(t, env.db.Model(&gormModels.Clan{}).Where("name = ?", "Wolves").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
