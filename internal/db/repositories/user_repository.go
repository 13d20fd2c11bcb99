package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"infinite-experiment/clanledger/internal/constants"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new GORM-based user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// GetByID returns nil, nil when the member has no record yet
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*gormModels.User, error) {
	return r.first(r.db.WithContext(ctx), userID)
}

func (r *UserRepository) GetForUpdate(ctx context.Context, userID int64) (*gormModels.User, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *UserRepository) first(q *gorm.DB, userID int64) (*gormModels.User, error) {
	var user gormModels.User
	err := q.Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *gormModels.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// AddPoints adjusts lifetime points by a signed delta and refreshes activity fields.
func (r *UserRepository) AddPoints(ctx context.Context, userID int64, delta int64, lastActive time.Time, streakDays int) error {
	err := r.db.WithContext(ctx).Model(&gormModels.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"points":      gorm.Expr("points + ?", delta),
			"last_active": lastActive,
			"streak_days": streakDays,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update user points: %w", err)
	}
	return nil
}

// DeductPoints subtracts without touching activity fields. Used for removals and purchases.
func (r *UserRepository) DeductPoints(ctx context.Context, userID int64, amount int64) error {
	err := r.db.WithContext(ctx).Model(&gormModels.User{}).
		Where("user_id = ?", userID).
		Update("points", gorm.Expr("points - ?", amount)).Error
	if err != nil {
		return fmt.Errorf("failed to deduct user points: %w", err)
	}
	return nil
}

// AssignClan upserts the member's clan assignment.
func (r *UserRepository) AssignClan(ctx context.Context, userID int64, clanName string, now time.Time) error {
	user := gormModels.User{
		UserID:    userID,
		ClanName:  &clanName,
		WeeklyCap: constants.DefaultUserWeeklyCap,
		JoinDate:  now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"clan_name"}),
	}).Create(&user).Error
	if err != nil {
		return fmt.Errorf("failed to assign clan: %w", err)
	}
	return nil
}
