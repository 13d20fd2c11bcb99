package gorm

import (
	"infinite-experiment/clanledger/internal/constants"
	"time"
)

// APIKey authorises a chat-integration client. Role bounds what the client may assert.
type APIKey struct {
	ID        uint                `gorm:"column:id;primaryKey"`
	Key       string              `gorm:"column:key;size:64;uniqueIndex;not null"`
	Status    bool                `gorm:"column:status;default:true"`
	Role      constants.ActorRole `gorm:"column:role;size:20;default:member"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (APIKey) TableName() string {
	return "api_keys"
}

// AllModels lists every table owned by the ledger, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&Clan{},
		&User{},
		&PointLog{},
		&Achievement{},
		&ConfigEntry{},
		&WhitelistRole{},
		&ChannelMultiplier{},
		&SeasonalEvent{},
		&DailyChallenge{},
		&ShopItem{},
		&APIKey{},
	}
}
