package gorm

import "time"

// ConfigEntry is a single-valued runtime setting.
type ConfigEntry struct {
	Key   string `gorm:"column:key;primaryKey;size:100"`
	Value string `gorm:"column:value"`
}

func (ConfigEntry) TableName() string {
	return "config"
}

// WhitelistRole is one member of the whitelisted role set.
type WhitelistRole struct {
	RoleName  string    `gorm:"column:role_name;primaryKey;size:100"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (WhitelistRole) TableName() string {
	return "whitelist_roles"
}

type ChannelMultiplier struct {
	ChannelID   int64   `gorm:"column:channel_id;primaryKey;autoIncrement:false"`
	Multiplier  float64 `gorm:"column:multiplier;not null"`
	ChannelName string  `gorm:"column:channel_name"`
}

func (ChannelMultiplier) TableName() string {
	return "channel_multipliers"
}

// SeasonalEvent dates are inclusive calendar days in UTC (YYYY-MM-DD).
type SeasonalEvent struct {
	EventName       string  `gorm:"column:event_name;primaryKey;size:100"`
	StartDate       string  `gorm:"column:start_date;size:10;not null"`
	EndDate         string  `gorm:"column:end_date;size:10;not null"`
	PointMultiplier float64 `gorm:"column:point_multiplier;not null"`
	IsActive        bool    `gorm:"column:is_active;default:true"`
}

func (SeasonalEvent) TableName() string {
	return "seasonal_events"
}
