package services

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"

	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/db/repositories"
	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/logging"
	"infinite-experiment/clanledger/internal/models/dtos"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"gorm.io/gorm"
)

var clanNamePattern = regexp.MustCompile(`^[A-Za-z0-9 _-]+$`)

// ValidateClanName accepts letters, digits, spaces, hyphens and underscores, up to 50 characters.
func ValidateClanName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len(name) > constants.MaxClanNameLength || !clanNamePattern.MatchString(name) {
		return engine.NewError(constants.ErrCodeInvalidClanName)
	}
	return nil
}

type ClanService struct {
	db          *gorm.DB
	clans       *repositories.ClanRepository
	users       *repositories.UserRepository
	leaderboard *repositories.LeaderboardRepository
	ledger      *engine.Engine
	defaultCap  int64
}

func NewClanService(
	db *gorm.DB,
	leaderboard *repositories.LeaderboardRepository,
	ledger *engine.Engine,
	defaultCap int64,
) *ClanService {
	if defaultCap <= 0 {
		defaultCap = constants.DefaultClanMaxPoints
	}
	return &ClanService{
		db:          db,
		clans:       repositories.NewClanRepository(db),
		users:       repositories.NewUserRepository(db),
		leaderboard: leaderboard,
		ledger:      ledger,
		defaultCap:  defaultCap,
	}
}

func (s *ClanService) CreateClan(ctx context.Context, name string) (*gormModels.Clan, error) {
	if err := ValidateClanName(name); err != nil {
		return nil, err
	}

	existing, err := s.clans.GetByName(ctx, name)
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	if existing != nil {
		return nil, engine.NewError(constants.ErrCodeDuplicateClan)
	}

	week := engine.WeekStart(s.ledger.Now())
	clan := &gormModels.Clan{
		Name:          name,
		MaxPoints:     s.defaultCap,
		LastWeekStart: &week,
	}
	if err := s.clans.Create(ctx, clan); err != nil {
		// lost a race with a concurrent create of the same name
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, engine.NewError(constants.ErrCodeDuplicateClan)
		}
		return nil, engine.PersistenceError(err)
	}

	logging.Info("Clan created", "clan", name, "max_points", s.defaultCap)
	return clan, nil
}

func (s *ClanService) AssignMember(ctx context.Context, clanName string, userID int64) error {
	clan, err := s.clans.GetByName(ctx, clanName)
	if err != nil {
		return engine.PersistenceError(err)
	}
	if clan == nil {
		return engine.NewError(constants.ErrCodeClanNotFound)
	}
	if err := s.users.AssignClan(ctx, userID, clanName, s.ledger.Now().UTC()); err != nil {
		return engine.PersistenceError(err)
	}
	logging.Info("Member assigned", "clan", clanName, "user_id", userID)
	return nil
}

func (s *ClanService) SetWeeklyCap(ctx context.Context, clanName string, maxPoints int64) error {
	if maxPoints < constants.MinWeeklyCap || maxPoints > constants.MaxWeeklyCap {
		return engine.NewLimitError(constants.ErrCodeInvalidAmount, maxPoints, constants.MaxWeeklyCap)
	}
	updated, err := s.clans.SetMaxPoints(ctx, clanName, maxPoints)
	if err != nil {
		return engine.PersistenceError(err)
	}
	if !updated {
		return engine.NewError(constants.ErrCodeClanNotFound)
	}
	return nil
}

// SyncFromRoles turns eligible platform roles into clans and assigns their members.
func (s *ClanService) SyncFromRoles(ctx context.Context, roles []dtos.PlatformRole) (*dtos.SyncClansResponse, error) {
	res := &dtos.SyncClansResponse{}
	now := s.ledger.Now().UTC()

	for _, role := range roles {
		if !eligibleClanRole(role) {
			continue
		}

		existing, err := s.clans.GetByName(ctx, role.Name)
		if err != nil {
			return nil, engine.PersistenceError(err)
		}
		if existing == nil {
			week := engine.WeekStart(now)
			err = s.clans.Create(ctx, &gormModels.Clan{
				Name:          role.Name,
				MaxPoints:     s.defaultCap,
				LastWeekStart: &week,
			})
			switch {
			case errors.Is(err, gorm.ErrDuplicatedKey):
				// created concurrently, treat as existing
			case err != nil:
				return nil, engine.PersistenceError(err)
			default:
				res.ClansCreated++
			}
		}

		for _, memberID := range role.MemberIDs {
			if err := s.users.AssignClan(ctx, memberID, role.Name, now); err != nil {
				return nil, engine.PersistenceError(err)
			}
			res.UsersSynced++
		}
	}

	logging.Info("Clans synced from roles",
		"roles", len(roles),
		"clans_created", res.ClansCreated,
		"users_synced", res.UsersSynced,
	)
	return res, nil
}

func eligibleClanRole(role dtos.PlatformRole) bool {
	if role.Name == constants.EveryoneRole || role.Managed || len(role.MemberIDs) == 0 {
		return false
	}
	lower := strings.ToLower(role.Name)
	for _, kw := range constants.ReservedRoleKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return ValidateClanName(role.Name) == nil
}

// GetClanInfo rolls the clan over if needed and reports its standing for the week.
func (s *ClanService) GetClanInfo(ctx context.Context, clanName string) (*dtos.ClanInfoResponse, error) {
	if _, _, err := s.ledger.Weekly().ResolveClanPoints(ctx, clanName, s.ledger.Now()); err != nil {
		return nil, err
	}
	clan, err := s.clans.GetByName(ctx, clanName)
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	if clan == nil {
		return nil, engine.NewError(constants.ErrCodeClanNotFound)
	}
	count, err := s.leaderboard.MemberCount(ctx, clanName)
	if err != nil {
		return nil, engine.PersistenceError(err)
	}

	var progress float64
	if clan.MaxPoints > 0 {
		progress = math.Round(float64(clan.Points)/float64(clan.MaxPoints)*1000) / 10
	}
	return &dtos.ClanInfoResponse{
		Name:            clan.Name,
		Points:          clan.Points,
		LastWeekPoints:  clan.LastWeekPoints,
		MaxPoints:       clan.MaxPoints,
		MemberCount:     count,
		ProgressPercent: progress,
	}, nil
}

func (s *ClanService) TopMembers(ctx context.Context, clanName string, limit int) ([]dtos.UserStanding, error) {
	if err := s.requireClan(ctx, clanName); err != nil {
		return nil, err
	}
	rows, err := s.leaderboard.TopClanMembers(ctx, clanName, clampLimit(limit, constants.DefaultLeaderboardLimit))
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	return userStandings(rows), nil
}

func (s *ClanService) Members(ctx context.Context, clanName string) ([]dtos.UserStanding, error) {
	if err := s.requireClan(ctx, clanName); err != nil {
		return nil, err
	}
	rows, err := s.leaderboard.ClanMembers(ctx, clanName)
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	return userStandings(rows), nil
}

func (s *ClanService) requireClan(ctx context.Context, clanName string) error {
	clan, err := s.clans.GetByName(ctx, clanName)
	if err != nil {
		return engine.PersistenceError(err)
	}
	if clan == nil {
		return engine.NewError(constants.ErrCodeClanNotFound)
	}
	return nil
}
