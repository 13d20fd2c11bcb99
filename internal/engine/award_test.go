package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"infinite-experiment/clanledger/internal/constants"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func award(h *testHarness, userID int64, clan string, amount int64) (*AwardResult, error) {
	return h.engine.Award(context.Background(), AwardRequest{
		UserID:     userID,
		ClanName:   clan,
		BaseAmount: amount,
		Source:     constants.SourceMessage,
	})
}

func TestAward_CreatesUserAndLogs(t *testing.T) {
	h := newHarness(t, 500)
	h.createClan(t, "Wolves", 20000)

	res, err := award(h, 42, "Wolves", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Amount)
	assert.Equal(t, int64(7), res.ClanPoints)
	assert.Equal(t, int64(7), res.UserPoints)
	assert.Empty(t, res.NewAchievements)

	var user gormModels.User
	require.NoError(t, h.db.Where("user_id = ?", 42).First(&user).Error)
	assert.Equal(t, "Wolves", user.ClanNameOrEmpty())
	assert.Equal(t, 1, user.StreakDays)
	require.NotNil(t, user.LastActive)

	var logs []gormModels.PointLog
	require.NoError(t, h.db.Where("user_id = ?", 42).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, constants.SourceMessage, logs[0].Source)
	assert.Equal(t, int64(7), logs[0].Amount)
}

func TestAward_ClanCapInvariant(t *testing.T) {
	h := newHarness(t, 500)
	h.createClan(t, "Wolves", 100)

	_, err := award(h, 1, "Wolves", 60)
	require.NoError(t, err)

	_, err = award(h, 2, "Wolves", 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClanCapExceeded)

	var le *LedgerError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, int64(60), le.Current)
	assert.Equal(t, int64(100), le.Limit)
	assert.False(t, le.Retryable())

	_, err = award(h, 2, "Wolves", 40)
	require.NoError(t, err)
	assert.Equal(t, int64(100), h.clan(t, "Wolves").Points)

	// the rejected award left no trace for user 2 beyond the accepted one
	assert.Equal(t, int64(40), h.logSum(t, 2))
	assert.Equal(t, int64(40), h.engine.Budget().Used(2, wednesday))
}

func TestAward_DailyBudget(t *testing.T) {
	h := newHarness(t, 500)
	h.createClan(t, "Wolves", 20000)

	_, err := award(h, 1, "Wolves", 300)
	require.NoError(t, err)

	_, err = award(h, 1, "Wolves", 300)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDailyCapExceeded)

	_, err = award(h, 1, "Wolves", 200)
	require.NoError(t, err)
	assert.Equal(t, int64(500), h.userPoints(t, 1))
}

func TestAward_RollsOverBeforeApplying(t *testing.T) {
	h := newHarness(t, 500)
	lastWeek := WeekStart(wednesday).AddDate(0, 0, -7)
	require.NoError(t, h.db.Create(&gormModels.Clan{Name: "Wolves", Points: 95, MaxPoints: 100, LastWeekStart: &lastWeek}).Error)

	res, err := award(h, 1, "Wolves", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.ClanPoints)

	clan := h.clan(t, "Wolves")
	assert.Equal(t, int64(10), clan.Points)
	assert.Equal(t, int64(95), clan.LastWeekPoints)
}

func TestAward_RolloverStaysWhenAwardRejected(t *testing.T) {
	h := newHarness(t, 500)
	lastWeek := WeekStart(wednesday).AddDate(0, 0, -7)
	require.NoError(t, h.db.Create(&gormModels.Clan{Name: "Wolves", Points: 80, MaxPoints: 100, LastWeekStart: &lastWeek}).Error)

	_, err := award(h, 1, "Wolves", 101)
	assert.ErrorIs(t, err, ErrClanCapExceeded)

	clan := h.clan(t, "Wolves")
	assert.Equal(t, int64(0), clan.Points)
	assert.Equal(t, int64(80), clan.LastWeekPoints)
}

func TestAward_Multipliers(t *testing.T) {
	h := newHarness(t, 500)
	h.createClan(t, "Wolves", 20000)
	h.config.channels[77] = 1.5
	h.config.seasonal = []float64{2}

	res, err := h.engine.Award(context.Background(), AwardRequest{
		UserID:     1,
		ClanName:   "Wolves",
		BaseAmount: 3,
		Source:     constants.SourceMessage,
		ChannelID:  int64Ptr(77),
	})
	require.NoError(t, err)
	// 3 x 1.5 x 2 = 9
	assert.Equal(t, int64(9), res.Amount)

	res, err = h.engine.Award(context.Background(), AwardRequest{
		UserID:     1,
		ClanName:   "Wolves",
		BaseAmount: 3,
		Source:     constants.SourceMessage,
		ChannelID:  int64Ptr(78),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), res.Amount)
}

func TestAward_RejectsInvalidInput(t *testing.T) {
	h := newHarness(t, 500)
	h.createClan(t, "Wolves", 20000)

	_, err := award(h, 1, "Wolves", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = award(h, 1, "", 5)
	assert.ErrorIs(t, err, ErrUserNotInClan)

	_, err = award(h, 1, "Nobody", 5)
	assert.ErrorIs(t, err, ErrClanNotFound)
}

func TestAward_AchievementsAndEvents(t *testing.T) {
	h := newHarness(t, 1000)
	h.createClan(t, "Wolves", 20000)

	res, err := award(h, 1, "Wolves", 520)
	require.NoError(t, err)
	assert.Equal(t, []string{"Reached 100 Points", "Reached 500 Points"}, res.NewAchievements)
	assert.Equal(t, []string{
		constants.EventMilestone + ":Reached 100 Points",
		constants.EventMilestone + ":Reached 500 Points",
	}, h.publisher.events)

	res, err = award(h, 1, "Wolves", 10)
	require.NoError(t, err)
	assert.Empty(t, res.NewAchievements)

	earned, err := h.engine.Achievements().Evaluate(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, earned)

	earned, err = h.engine.Achievements().Evaluate(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, earned)

	var count int64
	require.NoError(t, h.db.Model(&gormModels.Achievement{}).Where("user_id = ?", 1).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestAchievementEvaluator_BackfillsMissing(t *testing.T) {
	h := newHarness(t, 500)
	require.NoError(t, h.db.Create(&gormModels.User{UserID: 5, Points: 1200, JoinDate: wednesday}).Error)

	earned, err := h.engine.Achievements().Evaluate(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Reached 100 Points", "Reached 500 Points", "Reached 1000 Points"}, earned)

	earned, err = h.engine.Achievements().Evaluate(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, earned)

	earned, err = h.engine.Achievements().Evaluate(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, earned)
}

func TestAward_OncePerSource(t *testing.T) {
	h := newHarness(t, 500)
	h.createClan(t, "Wolves", 20000)
	req := AwardRequest{
		UserID:        1,
		ClanName:      "Wolves",
		BaseAmount:    50,
		Source:        constants.SourceChallenge + "2026-10-14",
		OncePerSource: true,
	}

	_, err := h.engine.Award(context.Background(), req)
	require.NoError(t, err)

	_, err = h.engine.Award(context.Background(), req)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, int64(50), h.userPoints(t, 1))
	// the refused claim gave its budget reservation back
	assert.Equal(t, int64(50), h.engine.Budget().Used(1, wednesday))
}

func TestAward_StreakDays(t *testing.T) {
	h := newHarness(t, 500)
	h.createClan(t, "Wolves", 20000)

	streak := func() int {
		var u gormModels.User
		require.NoError(t, h.db.Where("user_id = ?", 1).First(&u).Error)
		return u.StreakDays
	}

	_, err := award(h, 1, "Wolves", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, streak())

	_, err = award(h, 1, "Wolves", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, streak(), "same day keeps the streak")

	h.clock.Set(wednesday.AddDate(0, 0, 1))
	_, err = award(h, 1, "Wolves", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, streak())

	h.clock.Set(wednesday.AddDate(0, 0, 4))
	_, err = award(h, 1, "Wolves", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, streak(), "a gap restarts the streak")
}

func TestNextStreak(t *testing.T) {
	yesterday := wednesday.Add(-20 * time.Hour)
	lastWeek := wednesday.AddDate(0, 0, -7)

	assert.Equal(t, 1, nextStreak(0, nil, wednesday))
	assert.Equal(t, 4, nextStreak(3, &yesterday, wednesday))
	assert.Equal(t, 1, nextStreak(9, &lastWeek, wednesday))
}

func TestAward_ConcurrentCapAndLedger(t *testing.T) {
	h := newHarness(t, 500)
	h.createClan(t, "Wolves", 100)

	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			if _, err := award(h, userID, "Wolves", 10); err == nil {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}(int64(i%5 + 1))
	}
	wg.Wait()

	assert.Equal(t, 10, applied)
	assert.Equal(t, int64(100), h.clan(t, "Wolves").Points)

	for userID := int64(1); userID <= 5; userID++ {
		var u gormModels.User
		if err := h.db.Where("user_id = ?", userID).First(&u).Error; err != nil {
			continue
		}
		assert.Equal(t, u.Points, h.logSum(t, userID), "ledger sum for user %d", userID)
	}
}
