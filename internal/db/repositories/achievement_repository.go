package repositories

import (
	"context"
	"fmt"
	"time"

	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

func (r *AchievementRepository) WithTx(tx *gorm.DB) *AchievementRepository {
	return &AchievementRepository{db: tx}
}

// InsertIfAbsent records the achievement and reports whether a new row was written.
func (r *AchievementRepository) InsertIfAbsent(ctx context.Context, userID int64, name string, earned time.Time) (bool, error) {
	row := gormModels.Achievement{
		UserID:          userID,
		AchievementName: name,
		EarnedDate:      earned,
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert achievement: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ListByUser returns achievements newest first
func (r *AchievementRepository) ListByUser(ctx context.Context, userID int64) ([]gormModels.Achievement, error) {
	var rows []gormModels.Achievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_date DESC, achievement_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return rows, nil
}

func (r *AchievementRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&gormModels.Achievement{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count achievements: %w", err)
	}
	return count, nil
}
