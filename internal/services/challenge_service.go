package services

import (
	"context"
	"strings"

	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/db/repositories"
	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/models/dtos"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"gorm.io/gorm"
)

type ChallengeService struct {
	repo   *repositories.ChallengeRepository
	users  *repositories.UserRepository
	ledger *engine.Engine
}

func NewChallengeService(db *gorm.DB, ledger *engine.Engine) *ChallengeService {
	return &ChallengeService{
		repo:   repositories.NewChallengeRepository(db),
		users:  repositories.NewUserRepository(db),
		ledger: ledger,
	}
}

func (s *ChallengeService) today() string {
	return s.ledger.Now().UTC().Format(constants.DateLayout)
}

// SetToday replaces today's challenge.
func (s *ChallengeService) SetToday(ctx context.Context, challenge string, reward int64) (*dtos.ChallengeResponse, error) {
	challenge = strings.TrimSpace(challenge)
	if challenge == "" {
		return nil, engine.Errorf(constants.ErrCodeInvalidInput, "challenge text is required")
	}
	if reward < constants.MinChallengeReward || reward > constants.MaxChallengeReward {
		return nil, engine.NewLimitError(constants.ErrCodeInvalidAmount, reward, constants.MaxChallengeReward)
	}

	row := &gormModels.DailyChallenge{Date: s.today(), Challenge: challenge, RewardPoints: reward}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return nil, engine.PersistenceError(err)
	}
	return &dtos.ChallengeResponse{Date: row.Date, Challenge: row.Challenge, RewardPoints: row.RewardPoints}, nil
}

// Today returns nil, nil when no challenge has been set.
func (s *ChallengeService) Today(ctx context.Context) (*dtos.ChallengeResponse, error) {
	row, err := s.repo.GetByDate(ctx, s.today())
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	if row == nil {
		return nil, nil
	}
	return &dtos.ChallengeResponse{Date: row.Date, Challenge: row.Challenge, RewardPoints: row.RewardPoints}, nil
}

// Claim awards today's reward to a member once per day through the normal award gates.
func (s *ChallengeService) Claim(ctx context.Context, userID int64) (*engine.AwardResult, error) {
	date := s.today()
	row, err := s.repo.GetByDate(ctx, date)
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	if row == nil {
		return nil, engine.Errorf(constants.ErrCodeNotFound, "no challenge is set for %s", date)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	clanName := user.ClanNameOrEmpty()
	if clanName == "" {
		return nil, engine.NewError(constants.ErrCodeUserNotInClan)
	}

	return s.ledger.Award(ctx, engine.AwardRequest{
		UserID:        userID,
		ClanName:      clanName,
		BaseAmount:    row.RewardPoints,
		Source:        constants.SourceChallenge + date,
		OncePerSource: true,
	})
}
