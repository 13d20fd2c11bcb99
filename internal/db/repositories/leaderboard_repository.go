package repositories

import (
	"context"
	"fmt"

	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// LeaderboardRepository serves the read-only standings queries over raw SQL
type LeaderboardRepository struct {
	db *sqlx.DB
}

func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

func (r *LeaderboardRepository) TopClans(ctx context.Context, limit int) ([]entities.ClanRow, error) {
	rows := []entities.ClanRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(constants.TopClans), limit); err != nil {
		return nil, fmt.Errorf("failed to fetch top clans: %w", err)
	}
	return rows, nil
}

// ClanWeeks returns every clan row with its week stamp, untouched by rollover.
func (r *LeaderboardRepository) ClanWeeks(ctx context.Context) ([]entities.ClanRow, error) {
	rows := []entities.ClanRow{}
	if err := r.db.SelectContext(ctx, &rows, constants.ClanWeeks); err != nil {
		return nil, fmt.Errorf("failed to fetch clan weeks: %w", err)
	}
	return rows, nil
}

func (r *LeaderboardRepository) WeeklyComparison(ctx context.Context) ([]entities.ClanRow, error) {
	rows := []entities.ClanRow{}
	if err := r.db.SelectContext(ctx, &rows, constants.WeeklyComparison); err != nil {
		return nil, fmt.Errorf("failed to fetch weekly comparison: %w", err)
	}
	return rows, nil
}

func (r *LeaderboardRepository) TopUsers(ctx context.Context, limit int) ([]entities.UserRow, error) {
	rows := []entities.UserRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(constants.TopUsers), limit); err != nil {
		return nil, fmt.Errorf("failed to fetch top users: %w", err)
	}
	return rows, nil
}

func (r *LeaderboardRepository) TopClanMembers(ctx context.Context, clanName string, limit int) ([]entities.UserRow, error) {
	rows := []entities.UserRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(constants.TopClanMembers), clanName, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch top clan members: %w", err)
	}
	return rows, nil
}

func (r *LeaderboardRepository) ClanMembers(ctx context.Context, clanName string) ([]entities.UserRow, error) {
	rows := []entities.UserRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(constants.ClanMembers), clanName); err != nil {
		return nil, fmt.Errorf("failed to fetch clan members: %w", err)
	}
	return rows, nil
}

func (r *LeaderboardRepository) MemberCount(ctx context.Context, clanName string) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(constants.ClanMemberCount), clanName); err != nil {
		return 0, fmt.Errorf("failed to count clan members: %w", err)
	}
	return count, nil
}

// RankInClan is 1 + the number of clan members holding strictly more points
func (r *LeaderboardRepository) RankInClan(ctx context.Context, clanName string, points int64) (int64, error) {
	var ahead int64
	if err := r.db.GetContext(ctx, &ahead, r.db.Rebind(constants.RankInClan), clanName, points); err != nil {
		return 0, fmt.Errorf("failed to compute rank: %w", err)
	}
	return ahead + 1, nil
}
