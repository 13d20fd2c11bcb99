package repositories

import (
	"context"
	"fmt"

	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"gorm.io/gorm"
)

// PointLogRepository is append-only; entries are never updated or deleted.
type PointLogRepository struct {
	db *gorm.DB
}

func NewPointLogRepository(db *gorm.DB) *PointLogRepository {
	return &PointLogRepository{db: db}
}

func (r *PointLogRepository) WithTx(tx *gorm.DB) *PointLogRepository {
	return &PointLogRepository{db: tx}
}

func (r *PointLogRepository) Append(ctx context.Context, entry *gormModels.PointLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append point log: %w", err)
	}
	return nil
}

// Recent returns the newest entries first
func (r *PointLogRepository) Recent(ctx context.Context, userID int64, limit int) ([]gormModels.PointLog, error) {
	var entries []gormModels.PointLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch point log: %w", err)
	}
	return entries, nil
}

func (r *PointLogRepository) ExistsWithSource(ctx context.Context, userID int64, source string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&gormModels.PointLog{}).
		Where("user_id = ? AND source = ?", userID, source).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check point log: %w", err)
	}
	return count > 0, nil
}

// SumForUser totals every entry for the member. Equal to users.points when the ledger is consistent.
func (r *PointLogRepository) SumForUser(ctx context.Context, userID int64) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&gormModels.PointLog{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum point log: %w", err)
	}
	return sum, nil
}
