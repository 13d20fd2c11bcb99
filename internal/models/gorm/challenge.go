package gorm

type DailyChallenge struct {
	Date         string `gorm:"column:date;primaryKey;size:10"`
	Challenge    string `gorm:"column:challenge;not null"`
	RewardPoints int64  `gorm:"column:reward_points;not null"`
}

// TableName specifies the table name for GORM
func (DailyChallenge) TableName() string {
	return "daily_challenges"
}
