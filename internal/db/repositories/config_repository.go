package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigRepository owns the admin-mutated runtime settings tables
type ConfigRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// GetValue returns "" when the key is unset
func (r *ConfigRepository) GetValue(ctx context.Context, key string) (string, error) {
	var entry gormModels.ConfigEntry
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config %s: %w", key, err)
	}
	return entry.Value, nil
}

func (r *ConfigRepository) SetValue(ctx context.Context, key, value string) error {
	entry := gormModels.ConfigEntry{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write config %s: %w", key, err)
	}
	return nil
}

// AddWhitelistRole reports false when the role was already whitelisted
func (r *ConfigRepository) AddWhitelistRole(ctx context.Context, roleName string) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&gormModels.WhitelistRole{RoleName: roleName})
	if res.Error != nil {
		return false, fmt.Errorf("failed to whitelist role: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// RemoveWhitelistRole reports false when the role was not whitelisted
func (r *ConfigRepository) RemoveWhitelistRole(ctx context.Context, roleName string) (bool, error) {
	res := r.db.WithContext(ctx).Where("role_name = ?", roleName).Delete(&gormModels.WhitelistRole{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove whitelisted role: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ConfigRepository) WhitelistRoles(ctx context.Context) ([]string, error) {
	var roles []string
	err := r.db.WithContext(ctx).Model(&gormModels.WhitelistRole{}).
		Order("role_name ASC").
		Pluck("role_name", &roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list whitelisted roles: %w", err)
	}
	return roles, nil
}

func (r *ConfigRepository) UpsertChannelMultiplier(ctx context.Context, m *gormModels.ChannelMultiplier) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"multiplier", "channel_name"}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("failed to save channel multiplier: %w", err)
	}
	return nil
}

func (r *ConfigRepository) ChannelMultipliers(ctx context.Context) ([]gormModels.ChannelMultiplier, error) {
	var rows []gormModels.ChannelMultiplier
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list channel multipliers: %w", err)
	}
	return rows, nil
}

func (r *ConfigRepository) UpsertSeasonalEvent(ctx context.Context, ev *gormModels.SeasonalEvent) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_date", "end_date", "point_multiplier", "is_active"}),
	}).Create(ev).Error
	if err != nil {
		return fmt.Errorf("failed to save seasonal event: %w", err)
	}
	return nil
}

// ActiveSeasonalEvents returns every enabled event; callers match the date window.
func (r *ConfigRepository) ActiveSeasonalEvents(ctx context.Context) ([]gormModels.SeasonalEvent, error) {
	var rows []gormModels.SeasonalEvent
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("event_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list seasonal events: %w", err)
	}
	return rows, nil
}
