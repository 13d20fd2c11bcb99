package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

func (r *ShopRepository) WithTx(tx *gorm.DB) *ShopRepository {
	return &ShopRepository{db: tx}
}

// Upsert adds the item or updates its cost when the name already exists
func (r *ShopRepository) Upsert(ctx context.Context, item *gormModels.ShopItem) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"cost"}),
	}).Create(item).Error
	if err != nil {
		return fmt.Errorf("failed to save shop item: %w", err)
	}
	return nil
}

func (r *ShopRepository) GetByName(ctx context.Context, name string) (*gormModels.ShopItem, error) {
	var item gormModels.ShopItem
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch shop item: %w", err)
	}
	return &item, nil
}

// List returns the catalog cheapest first
func (r *ShopRepository) List(ctx context.Context) ([]gormModels.ShopItem, error) {
	var items []gormModels.ShopItem
	if err := r.db.WithContext(ctx).Order("cost ASC, name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list shop items: %w", err)
	}
	return items, nil
}
