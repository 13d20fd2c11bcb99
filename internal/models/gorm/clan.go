package gorm

import "time"

type Clan struct {
	Name           string     `gorm:"column:name;primaryKey;size:50"`
	Points         int64      `gorm:"column:points;not null;default:0;index"`
	LastWeekPoints int64      `gorm:"column:last_week_points;not null;default:0"`
	LastWeekStart  *time.Time `gorm:"column:last_week_start"`
	MaxPoints      int64      `gorm:"column:max_points;not null;default:20000"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Clan) TableName() string {
	return "clans"
}
