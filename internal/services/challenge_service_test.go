package services

import (
	"context"
	"testing"

	"infinite-experiment/clanledger/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeService_SetAndClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	today, err := env.challenges.Today(ctx)
	require.NoError(t, err)
	assert.Nil(t, today)

	_, err = env.challenges.Claim(ctx, 1)
	assert.ErrorIs(t, err, engine.ErrNotFound)

	_, err = env.challenges.SetToday(ctx, "Post a screenshot", 1001)
	assert.ErrorIs(t, err, engine.ErrInvalidAmount)

	set, err := env.challenges.SetToday(ctx, "Post a screenshot", 40)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14", set.Date)

	today, err = env.challenges.Today(ctx)
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, int64(40), today.RewardPoints)

	_, err = env.challenges.Claim(ctx, 1)
	assert.ErrorIs(t, err, engine.ErrUserNotInClan)

	_, err = env.clans.CreateClan(ctx, "Wolves")
	require.NoError(t, err)
	require.NoError(t, env.clans.AssignMember(ctx, "Wolves", 1))

	res, err := env.challenges.Claim(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(40), res.Amount)

	_, err = env.challenges.Claim(ctx, 1)
	assert.ErrorIs(t, err, engine.ErrDuplicate)

	entries, err := env.stats.PointLog(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "challenge:2026-10-14", entries[0].Source)
}
