package services

import (
	"context"
	"strings"

	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/db/repositories"
	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/logging"
	"infinite-experiment/clanledger/internal/models/dtos"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"gorm.io/gorm"
)

type ShopService struct {
	db     *gorm.DB
	shop   *repositories.ShopRepository
	users  *repositories.UserRepository
	logs   *repositories.PointLogRepository
	ledger *engine.Engine
}

func NewShopService(db *gorm.DB, ledger *engine.Engine) *ShopService {
	return &ShopService{
		db:     db,
		shop:   repositories.NewShopRepository(db),
		users:  repositories.NewUserRepository(db),
		logs:   repositories.NewPointLogRepository(db),
		ledger: ledger,
	}
}

func (s *ShopService) AddItem(ctx context.Context, name string, cost int64) (*dtos.ShopItemResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > constants.MaxShopItemName {
		return nil, engine.Errorf(constants.ErrCodeInvalidInput, "item name must be 1-%d characters", constants.MaxShopItemName)
	}
	if cost < 1 {
		return nil, engine.NewLimitError(constants.ErrCodeInvalidAmount, cost, 1)
	}
	if err := s.shop.Upsert(ctx, &gormModels.ShopItem{Name: name, Cost: cost}); err != nil {
		return nil, engine.PersistenceError(err)
	}
	return &dtos.ShopItemResponse{Name: name, Cost: cost}, nil
}

func (s *ShopService) Catalog(ctx context.Context) ([]dtos.ShopItemResponse, error) {
	items, err := s.shop.List(ctx)
	if err != nil {
		return nil, engine.PersistenceError(err)
	}
	out := make([]dtos.ShopItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dtos.ShopItemResponse{Name: it.Name, Cost: it.Cost})
	}
	return out, nil
}

// Purchase spends lifetime points. The deduction is logged as a negative
// "purchase:<item>" entry so the member's log still sums to their points.
// Clan totals are untouched.
func (s *ShopService) Purchase(ctx context.Context, userID int64, itemName string) (*dtos.PurchaseResponse, error) {
	var res *dtos.PurchaseResponse
	now := s.ledger.Now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.shop.WithTx(tx).GetByName(ctx, itemName)
		if err != nil {
			return err
		}
		if item == nil {
			return engine.Errorf(constants.ErrCodeNotFound, "item %s is not in the shop", itemName)
		}

		users := s.users.WithTx(tx)
		user, err := users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return engine.Errorf(constants.ErrCodeNotFound, "member %d has no points yet", userID)
		}
		if user.Points < item.Cost {
			return engine.NewLimitError(constants.ErrCodeInvalidAmount, user.Points, item.Cost)
		}

		if err := users.DeductPoints(ctx, userID, item.Cost); err != nil {
			return err
		}
		if err := s.logs.WithTx(tx).Append(ctx, &gormModels.PointLog{
			UserID:    userID,
			Amount:    -item.Cost,
			Source:    constants.SourcePurchase + item.Name,
			Timestamp: now,
		}); err != nil {
			return err
		}

		res = &dtos.PurchaseResponse{
			UserID:          userID,
			ItemName:        item.Name,
			Cost:            item.Cost,
			RemainingPoints: user.Points - item.Cost,
		}
		return nil
	})
	if err != nil {
		return nil, engine.PersistenceError(err)
	}

	logging.Info("Shop purchase", "user_id", userID, "item", res.ItemName, "cost", res.Cost)
	return res, nil
}
