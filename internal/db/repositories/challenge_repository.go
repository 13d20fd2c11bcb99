package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChallengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Upsert replaces the challenge for its date
func (r *ChallengeRepository) Upsert(ctx context.Context, c *gormModels.DailyChallenge) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"challenge", "reward_points"}),
	}).Create(c).Error
	if err != nil {
		return fmt.Errorf("failed to save daily challenge: %w", err)
	}
	return nil
}

// GetByDate returns nil, nil when no challenge is set for the date
func (r *ChallengeRepository) GetByDate(ctx context.Context, date string) (*gormModels.DailyChallenge, error) {
	var c gormModels.DailyChallenge
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch daily challenge: %w", err)
	}
	return &c, nil
}
