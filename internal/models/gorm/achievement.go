package gorm

import "time"

type Achievement struct {
	UserID          int64     `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	AchievementName string    `gorm:"column:achievement_name;primaryKey;size:100"`
	EarnedDate      time.Time `gorm:"column:earned_date;not null"`
}

// TableName specifies the table name for GORM
func (Achievement) TableName() string {
	return "achievements"
}
