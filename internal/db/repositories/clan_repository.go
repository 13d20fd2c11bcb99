package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClanRepository struct {
	db *gorm.DB
}

// NewClanRepository creates a new GORM-based clan repository
func NewClanRepository(db *gorm.DB) *ClanRepository {
	return &ClanRepository{db: db}
}

// WithTx returns a copy bound to an open transaction
func (r *ClanRepository) WithTx(tx *gorm.DB) *ClanRepository {
	return &ClanRepository{db: tx}
}

func (r *ClanRepository) Create(ctx context.Context, clan *gormModels.Clan) error {
	if err := r.db.WithContext(ctx).Create(clan).Error; err != nil {
		return fmt.Errorf("failed to create clan: %w", err)
	}
	return nil
}

// GetByName returns nil, nil when the clan does not exist
func (r *ClanRepository) GetByName(ctx context.Context, name string) (*gormModels.Clan, error) {
	return r.first(r.db.WithContext(ctx), name)
}

// GetForUpdate reads the clan row under a row lock (SELECT ... FOR UPDATE).
// SQLite ignores the locking clause; its single writer connection serializes instead.
func (r *ClanRepository) GetForUpdate(ctx context.Context, name string) (*gormModels.Clan, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), name)
}

func (r *ClanRepository) first(q *gorm.DB, name string) (*gormModels.Clan, error) {
	var clan gormModels.Clan
	err := q.Where("name = ?", name).First(&clan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch clan: %w", err)
	}
	return &clan, nil
}

func (r *ClanRepository) Names(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&gormModels.Clan{}).Order("name ASC").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list clan names: %w", err)
	}
	return names, nil
}

// Archive moves the current total into last_week_points and starts a new week at zero.
// Column references on the right-hand side read the pre-update row.
func (r *ClanRepository) Archive(ctx context.Context, name string, weekStart time.Time) error {
	err := r.db.WithContext(ctx).Model(&gormModels.Clan{}).
		Where("name = ?", name).
		Updates(map[string]interface{}{
			"last_week_points": gorm.Expr("points"),
			"points":           0,
			"last_week_start":  weekStart,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to archive clan week: %w", err)
	}
	return nil
}

// StampWeek records the week a clan's points belong to without archiving.
func (r *ClanRepository) StampWeek(ctx context.Context, name string, weekStart time.Time) error {
	err := r.db.WithContext(ctx).Model(&gormModels.Clan{}).
		Where("name = ?", name).
		Update("last_week_start", weekStart).Error
	if err != nil {
		return fmt.Errorf("failed to stamp clan week: %w", err)
	}
	return nil
}

// AddPoints increments the clan total only while it stays within max_points.
// Returns false when the guard rejected the update.
func (r *ClanRepository) AddPoints(ctx context.Context, name string, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&gormModels.Clan{}).
		Where("name = ? AND points + ? <= max_points", name, amount).
		Update("points", gorm.Expr("points + ?", amount))
	if res.Error != nil {
		return false, fmt.Errorf("failed to add clan points: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// RemovePoints subtracts amount, clamping the total at zero.
func (r *ClanRepository) RemovePoints(ctx context.Context, name string, amount int64) error {
	err := r.db.WithContext(ctx).Model(&gormModels.Clan{}).
		Where("name = ?", name).
		Update("points", gorm.Expr("CASE WHEN points > ? THEN points - ? ELSE 0 END", amount, amount)).Error
	if err != nil {
		return fmt.Errorf("failed to remove clan points: %w", err)
	}
	return nil
}

func (r *ClanRepository) SetMaxPoints(ctx context.Context, name string, maxPoints int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&gormModels.Clan{}).
		Where("name = ?", name).
		Update("max_points", maxPoints)
	if res.Error != nil {
		return false, fmt.Errorf("failed to set clan cap: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
