package services

import (
	"context"

	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/db/repositories"
	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/models/dtos"

	"gorm.io/gorm"
)

// StatsService answers the read-only member and leaderboard queries.
type StatsService struct {
	users        *repositories.UserRepository
	logs         *repositories.PointLogRepository
	achievements *repositories.AchievementRepository
	leaderboard  *repositories.LeaderboardRepository
	ledger       *engine.Engine
}

func NewStatsService(db *gorm.DB, leaderboard *repositories.LeaderboardRepository, ledger *engine.Engine) *StatsService {
	return &StatsService{
		users:        repositories.NewUserRepository(db),
		logs:         repositories.NewPointLogRepository(db),
		achievements: repositories.NewAchievementRepository(db),
		leaderboard:  leaderboard,
		ledger:       ledger,
	}
}

// UserPoints reports zero for members who have never earned anything.
func (s *StatsService) UserPoints(ctx context.Context, userID int64) (*dtos.UserPointsResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	res := &dtos.UserPointsResponse{UserID: userID}
	if user != nil {
		res.Points = user.Points
		res.ClanName = user.ClanName
	}
	return res, nil
}

func (s *StatsService) UserStats(ctx context.Context, userID int64) (*dtos.UserStatsResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	if user == nil {
		return nil, engine.Errorf(constants.ErrCodeNotFound, "no stats recorded for member %d", userID)
	}

	achievements, err := s.achievements.CountByUser(ctx, userID)
	if err != nil {
		return nil, engine.PersistenceError(err)
	}

	now := s.ledger.Now()
	res := &dtos.UserStatsResponse{
		UserID:       user.UserID,
		ClanName:     user.ClanName,
		Points:       user.Points,
		StreakDays:   user.StreakDays,
		DaysAsMember: int(now.Sub(user.JoinDate).Hours() / 24),
		LastActive:   user.LastActive,
		JoinDate:     user.JoinDate,
		Achievements: int(achievements),
		WeeklyCap:    user.WeeklyCap,
	}
	if res.DaysAsMember < 0 {
		res.DaysAsMember = 0
	}

	if clanName := user.ClanNameOrEmpty(); clanName != "" {
		rank, err := s.leaderboard.RankInClan(ctx, clanName, user.Points)
		if err != nil {
			return nil, engine.PersistenceError(err)
		}
		res.RankInClan = rank
	}
	return res, nil
}

// UserClan returns "" when the member has no clan.
func (s *StatsService) UserClan(ctx context.Context, userID int64) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", engine.PersistenceError(err)
	}
	return user.ClanNameOrEmpty(), nil
}

func (s *StatsService) PointLog(ctx context.Context, userID int64, limit int) ([]dtos.PointLogEntry, error) {
	rows, err := s.logs.Recent(ctx, userID, clampLimit(limit, constants.DefaultPointLogLimit))
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	out := make([]dtos.PointLogEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, dtos.PointLogEntry{
			Amount:    r.Amount,
			Source:    r.Source,
			Timestamp: r.Timestamp,
			ChannelID: r.ChannelID,
		})
	}
	return out, nil
}

func (s *StatsService) Achievements(ctx context.Context, userID int64) ([]dtos.AchievementEntry, error) {
	rows, err := s.achievements.ListByUser(ctx, userID)
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	out := make([]dtos.AchievementEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, dtos.AchievementEntry{Name: r.AchievementName, EarnedDate: r.EarnedDate})
	}
	return out, nil
}

// ClanLeaderboard rolls every stale clan over before ranking.
func (s *StatsService) ClanLeaderboard(ctx context.Context, limit int) ([]dtos.ClanStanding, error) {
	if _, err := s.ledger.Weekly().RollOverStale(ctx, s.ledger.Now()); err != nil {
		return nil, err
	}
	rows, err := s.leaderboard.TopClans(ctx, clampLimit(limit, constants.DefaultLeaderboardLimit))
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	out := make([]dtos.ClanStanding, 0, len(rows))
	for i, r := range rows {
		out = append(out, dtos.ClanStanding{
			Rank:      i + 1,
			Name:      r.Name,
			Points:    r.Points,
			MaxPoints: r.MaxPoints,
		})
	}
	return out, nil
}

func (s *StatsService) UserLeaderboard(ctx context.Context, limit int) ([]dtos.UserStanding, error) {
	rows, err := s.leaderboard.TopUsers(ctx, clampLimit(limit, constants.DefaultLeaderboardLimit))
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	return userStandings(rows), nil
}

func (s *StatsService) WeeklyComparison(ctx context.Context) ([]dtos.WeeklyComparisonRow, error) {
	if _, err := s.ledger.Weekly().RollOverStale(ctx, s.ledger.Now()); err != nil {
		return nil, err
	}
	rows, err := s.leaderboard.WeeklyComparison(ctx)
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	out := make([]dtos.WeeklyComparisonRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, dtos.WeeklyComparisonRow{
			Name:           r.Name,
			Points:         r.Points,
			LastWeekPoints: r.LastWeekPoints,
			Delta:          r.Points - r.LastWeekPoints,
		})
	}
	return out, nil
}
